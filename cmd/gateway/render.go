package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/gateway/pkg/catalog"
	"mercator-hq/gateway/pkg/cli"
	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/gateway/functions"
	"mercator-hq/gateway/pkg/message"
	"mercator-hq/gateway/pkg/transport"
	"mercator-hq/gateway/pkg/variable"
)

// renderInterfaceAlias is the interface alias of synthesized requests.
const renderInterfaceAlias = "cli"

var renderFlags struct {
	template string
	apiFile  string
	method   string
	url      string
	headers  []string
	body     string
	vars     []string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template or run an api against a synthetic request",
	Long: `Render a template or run an api definition against a request built
from the flags, without starting the server.

With --template the template is rendered once and printed. With --api the
definition is loaded and executed, and the result, the response status,
headers and body are printed.

Examples:
  # Render a template
  gateway render --template 'hello ${request.header.x-user}' --header 'X-User: bob'

  # Render with variables
  gateway render --template '${total}' --var total=42

  # Run an api
  gateway render --api apis/shop.yaml --url http://localhost/shop/orders`,
	RunE: renderTemplate,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFlags.template, "template", "t", "", "template to render")
	renderCmd.Flags().StringVar(&renderFlags.apiFile, "api", "", "api definition to execute")
	renderCmd.Flags().StringVarP(&renderFlags.method, "method", "X", http.MethodGet, "request method")
	renderCmd.Flags().StringVar(&renderFlags.url, "url", "http://localhost/", "request URL")
	renderCmd.Flags().StringArrayVarP(&renderFlags.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	renderCmd.Flags().StringVarP(&renderFlags.body, "body", "d", "", "request body")
	renderCmd.Flags().StringArrayVar(&renderFlags.vars, "var", nil, "string variable as name=value (repeatable)")

	renderCmd.MarkFlagsMutuallyExclusive("template", "api")
	renderCmd.MarkFlagsOneRequired("template", "api")
}

func renderTemplate(cmd *cobra.Command, args []string) error {
	r, err := newRenderRequest()
	if err != nil {
		return err
	}

	logger := slog.New(slog.DiscardHandler)
	t := transport.FromRequest(renderInterfaceAlias, r)
	resp := message.NewResponse()
	ec, err := gateway.NewExecutionContext(t, message.NewRequest(r, 0), resp, gateway.WithLogger(logger))
	if err != nil {
		return cli.NewCommandError("render", err)
	}
	for _, v := range renderFlags.vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return cli.NewConfigError("var", fmt.Sprintf("invalid variable %q (want name=value)", v))
		}
		ec.Variables().Set(name, variable.NewStringValue(name, value))
	}

	out := cmd.OutOrStdout()
	if renderFlags.template != "" {
		_, err := fmt.Fprintln(out, ec.Parse(renderFlags.template))
		return err
	}

	api, err := catalog.NewLoader(nil, functions.Deps{Logger: logger}, logger).LoadFile(renderFlags.apiFile)
	if err != nil {
		return cli.NewCommandError("render", err)
	}
	if !api.Matches(r.URL.Path) {
		return cli.NewConfigError("url", fmt.Sprintf("path %s is not below context root %s", r.URL.Path, api.ContextRoot()))
	}
	result, err := ec.ExecuteAPI(api)
	if err != nil {
		return cli.NewCommandError("render", err)
	}

	printExecution(out, result, t.ResponseStatusCode(), resp, ec.Parse(resp.Body()))
	return nil
}

func newRenderRequest() (*http.Request, error) {
	var body io.Reader
	if renderFlags.body != "" {
		body = strings.NewReader(renderFlags.body)
	}
	r, err := http.NewRequest(renderFlags.method, renderFlags.url, body)
	if err != nil {
		return nil, cli.WrapConfigError("url", "invalid request", err)
	}
	for _, h := range renderFlags.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, cli.NewConfigError("header", fmt.Sprintf("invalid header %q (want 'Name: value')", h))
		}
		r.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return r, nil
}

func printExecution(w io.Writer, result gateway.Result, code int, resp *message.HTTP, body string) {
	fmt.Fprintf(w, "Result: %s\n", result.Status())
	if result.IsFailed() {
		fmt.Fprintf(w, "Error: %s\n", result.Root().Message())
	}
	fmt.Fprintf(w, "Status: %d\n", code)

	header := resp.Header()
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintf(w, "\n%s\n", body)
}
