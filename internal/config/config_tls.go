package config

import "fmt"

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		if err := validateCertAndKeyRequired(tls); err != nil {
			return err
		}
		if err := validateNoDuplicateCertSources(tls); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", tls.Mode)
	}

	return validateTLSVersion(tls)
}

func validateCertAndKeyRequired(tls TLSConfig) error {
	if (tls.CertFile == "" && tls.CertContent == "") || (tls.KeyFile == "" && tls.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required for server mode (provide either files or content)")
	}
	return nil
}

func validateNoDuplicateCertSources(tls TLSConfig) error {
	if tls.CertFile != "" && tls.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if tls.KeyFile != "" && tls.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

func validateTLSVersion(tls TLSConfig) error {
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}
