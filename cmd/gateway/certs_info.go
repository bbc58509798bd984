package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/gateway/pkg/cli"
	"mercator-hq/gateway/pkg/resolve"
	"mercator-hq/gateway/pkg/security/certificate"
)

// certificateKeys are the attribute paths listed by certs info, in the
// form functions resolve them below a certificate.
var certificateKeys = []string{
	"subject.dn", "subject.cn", "subject.o", "subject.ou", "subject.c",
	"subject.e", "subject.uid",
	"issuer.dn", "issuer.cn", "issuer.o",
	"serial", "version", "notbefore", "notafter",
	"publickey.algorithm", "publickey.size",
	"dnsnames",
	"md5", "sha1", "sha256",
}

var certsInfoFlags struct {
	output string
	all    bool
}

var certsInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Display certificate attributes",
	Long: `Display the attributes of every certificate in a PEM file.

Keys are the paths api functions use below a certificate, for example
${transport.security.remotecertificate.subject.cn}. Empty attributes are
omitted unless --all is given.

Examples:
  # Display certificate attributes
  gateway certs info server.crt

  # Include empty attributes, as JSON
  gateway certs info chain.pem --all --output json`,
	Args: cobra.ExactArgs(1),
	RunE: showCertificateInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVarP(&certsInfoFlags.output, "output", "o", "text", "output format (text, json, csv)")
	certsInfoCmd.Flags().BoolVar(&certsInfoFlags.all, "all", false, "include empty attributes")
}

// certificateInfo lists resolved attributes of a certificate chain.
type certificateInfo struct {
	File         string            `json:"file"`
	Certificates []certificateAttr `json:"certificates"`
}

type certificateAttr struct {
	Index      int               `json:"index"`
	Attributes map[string]string `json:"attributes"`
	keys       []string
}

func (c *certificateInfo) Header() []string {
	return []string{"CERT", "KEY", "VALUE"}
}

func (c *certificateInfo) Rows() [][]string {
	var rows [][]string
	for _, cert := range c.Certificates {
		for _, k := range cert.keys {
			rows = append(rows, []string{fmt.Sprint(cert.Index), k, cert.Attributes[k]})
		}
	}
	return rows
}

func newCertificateInfo(file string, chain []*certificate.Certificate, all bool) *certificateInfo {
	info := &certificateInfo{File: file}
	for i, c := range chain {
		attr := certificateAttr{Index: i, Attributes: make(map[string]string)}
		for _, k := range certificateKeys {
			v := resolve.Format(resolve.Certificate(k, c))
			if v == "" && !all {
				continue
			}
			attr.Attributes[k] = v
			attr.keys = append(attr.keys, k)
		}
		info.Certificates = append(info.Certificates, attr)
	}
	return info
}

func showCertificateInfo(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(certsInfoFlags.output)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}
	chain, err := certificate.ParsePEM(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newCertificateInfo(args[0], chain, certsInfoFlags.all))
}
