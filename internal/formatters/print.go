package formatters

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"infiniteats/internal/types"
)

//go:embed templates/print.html.tmpl
var printFS embed.FS

var printTemplate = template.Must(template.New("print.html.tmpl").
	Funcs(template.FuncMap{"join": strings.Join, "contact": contactLine}).
	ParseFS(printFS, "templates/print.html.tmpl"))

// RenderPrint writes a print-only HTML page for doc that opens the
// browser's print dialog on load.
func RenderPrint(w io.Writer, doc *types.ResumeDocument) error {
	if doc == nil {
		return fmt.Errorf("no resume to print")
	}
	return printTemplate.Execute(w, doc)
}
