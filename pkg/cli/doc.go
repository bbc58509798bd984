/*
Package cli provides the helpers shared by the gateway commands.

Output Formatting:

Command results are printed as text, JSON or CSV. Results implementing
Tabular print as aligned columns in text output and as rows in CSV:

	format, err := cli.ParseOutputFormat(flagOutput)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)

Errors:

ConfigError marks invalid configuration and flags, CommandError wraps the
failure of a command. ExitCode maps both to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, cancel := cli.SetupSignalHandler(context.Background(), logger)
	defer cancel()
	return srv.Start(ctx)
*/
package cli
