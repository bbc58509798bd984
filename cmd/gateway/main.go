// Gateway is an API gateway executing policy functions on HTTP requests.
//
// Every api is a tree of functions loaded from a YAML definition. The
// gateway matches a request to the api with the longest context root,
// runs its functions and sends the response message they produced.
//
// Usage:
//
//	# Start the gateway with the configuration in gateway.yaml
//	gateway run
//
//	# Start with a custom configuration file
//	gateway run --config /etc/gateway/gateway.yaml
//
//	# Check api definitions
//	gateway validate ./apis
//
//	# Evaluate a template against a synthetic request
//	gateway render --template 'hello ${request.header.x-user}' --header 'X-User: alice'
//
//	# Show a certificate as seen by api functions
//	gateway certs info server.crt
//
//	# Show version information
//	gateway version
package main

import "os"

func main() {
	os.Exit(Execute())
}
