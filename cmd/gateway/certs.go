package main

import (
	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Inspect TLS certificates",
	Long: `Inspect TLS certificates used by gateway interfaces.

Subcommands:
  info    - Display the attributes functions can resolve from a certificate
  verify  - Verify a certificate, its key and its chain

Examples:
  # Display certificate attributes
  gateway certs info server.crt

  # Verify certificate and key
  gateway certs verify --cert server.crt --key server.key --ca ca.pem`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}
