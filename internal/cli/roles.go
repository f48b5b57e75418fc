package cli

import (
	"fmt"

	"infiniteats/internal/formatters"
	"infiniteats/internal/types"

	"github.com/spf13/cobra"
)

var rolesJSON bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the target roles accepted by --role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if rolesJSON {
			body, err := formatters.GlobalRegistry.Format(rolesList(), "json")
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, body)
			return err
		}
		for _, role := range rolesList() {
			if _, err := fmt.Fprintln(out, role); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rolesCmd.Flags().BoolVar(&rolesJSON, "json", false, "Print the catalog as a JSON array")
}

func rolesList() []string {
	return append([]string(nil), types.Roles...)
}
