/*
Package tls builds the server TLS configuration of gateway interfaces.

	tlsConfig, reloader, err := tls.ServerConfig(iface.TLS, logger)
	if err != nil {
		return err
	}
	if reloader != nil {
		_ = reloader.Start(ctx)
	}
	server.TLSConfig = tlsConfig

The certificate is served through a CertificateReloader, which polls the
certificate and key files and swaps in renewed files without a restart.
A renewal that fails to load is logged and the previous certificate stays
in use.

# Client Certificates

With mtls enabled the interface asks clients for certificates:

  - require: a certificate verified against client_ca_file is mandatory
  - verify_if_given: a certificate is optional but verified when sent
  - request: a certificate is optional and not verified

Policy functions see the client chain through the transport of the
request, for example require_transport_security with a client
certificate requirement.
*/
package tls
