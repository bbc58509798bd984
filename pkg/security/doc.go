/*
Package security groups the transport security packages of the gateway.

# Certificates

Package certificate turns X.509 certificates into immutable values that
api functions read through ${transport.security.*} placeholders:

	chain, err := certificate.LoadFile("client.pem")
	if err != nil {
		return err
	}
	cn := chain[0].Subject().CN()

# TLS Configuration

Package tls builds the server TLS configuration of an interface from
config.TLSConfig, including client certificate authentication and
certificate hot reload:

	tlsConfig, reloader, err := tls.ServerConfig(iface.TLS, logger)
	if err != nil {
		return err
	}
	if err := reloader.Start(ctx); err != nil {
		return err
	}
*/
package security
