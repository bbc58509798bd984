package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/gateway/pkg/catalog"
	"mercator-hq/gateway/pkg/cli"
	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/gateway/functions"
	"mercator-hq/gateway/pkg/identity"
)

var validateFlags struct {
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate api definitions",
	Long: `Validate every api definition below a directory.

Each definition is parsed, checked against the definition schema and
built, so unknown function types and invalid function configuration are
reported as well. Context roots must be unique. The directory defaults to
apis.dir of the configuration.

Examples:
  # Validate the configured api directory
  gateway validate

  # Validate another directory
  gateway validate ./apis

  # Machine readable report
  gateway validate --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateAPIs,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format (text, json, csv)")
}

// apiReport is the result of a successful validation.
type apiReport struct {
	Dir  string      `json:"dir"`
	APIs []apiDetail `json:"apis"`
}

type apiDetail struct {
	Name        string `json:"name"`
	ContextRoot string `json:"context_root"`
	Functions   int    `json:"functions"`
	OnError     int    `json:"on_error"`
}

func (r *apiReport) Header() []string {
	return []string{"NAME", "CONTEXT ROOT", "FUNCTIONS", "ON_ERROR"}
}

func (r *apiReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.APIs))
	for _, a := range r.APIs {
		rows = append(rows, []string{a.Name, a.ContextRoot, strconv.Itoa(a.Functions), strconv.Itoa(a.OnError)})
	}
	return rows
}

func newAPIReport(dir string, apis []*gateway.API) *apiReport {
	r := &apiReport{Dir: dir, APIs: make([]apiDetail, 0, len(apis))}
	for _, api := range apis {
		r.APIs = append(r.APIs, apiDetail{
			Name:        api.Name(),
			ContextRoot: api.ContextRoot(),
			Functions:   api.Root().Len(),
			OnError:     len(api.Root().OnError()),
		})
	}
	return r
}

func validateAPIs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir := cfg.APIs.Dir
	if len(args) > 0 {
		dir = args[0]
	}

	logger := slog.New(slog.DiscardHandler)
	deps := functions.Deps{Logger: logger}
	if cfg.Credentials.File != "" {
		store, err := identity.LoadStore(cfg.Credentials.File, logger)
		if err != nil {
			return cli.WrapConfigError("credentials.file", "failed to load credentials", err)
		}
		deps.Verifier = store
	}

	out := cmd.OutOrStdout()
	apis, err := catalog.NewLoader(nil, deps, logger).LoadDir(dir)
	if err != nil {
		printValidationErrors(out, dir, err)
		return cli.ErrValidationFailed
	}

	return cli.NewFormatter(format).FormatTo(out, newAPIReport(dir, apis))
}

// printValidationErrors prints every error joined into err.
func printValidationErrors(w io.Writer, dir string, err error) {
	errs := []error{err}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}
	fmt.Fprintf(w, "Validating %s\n\n", dir)
	for _, e := range errs {
		fmt.Fprintf(w, "✗ %v\n", e)
	}
	fmt.Fprintf(w, "\n%d error(s)\n", len(errs))
}
