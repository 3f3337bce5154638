package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	tao "github.com/romilpunetha/tao"
	"github.com/romilpunetha/tao/internal/naming"
	"github.com/romilpunetha/tao/internal/output"
)

// RootCmd creates and returns the root command for the taogen CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "taogen",
		Short: "Scaffold TAO entities",
		Long: `taogen generates a new TAO entity from its schema name.

One invocation writes the entity's Thrift schema and Go operations, then
registers the entity in the EntityType enum, the Thrift build manifest and the
models and entities declarations.

  taogen init
  taogen generate EntUserSchema
  taogen generate EntProductSchema --fields "sku:string,price:double,stock:i32?"`,
		Version:       tao.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
			slog.SetDefault(newLogger(verbose))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	cmd.AddCommand(GenerateCmd())
	cmd.AddCommand(InitCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(VersionCmd())

	return cmd
}

// Execute runs the CLI with args and prints any error. Usage errors also print
// the usage of the command that failed.
func Execute(ctx context.Context, args []string) error {
	root := RootCmd()
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return nil
	}

	output.Error(err.Error())
	var usage *naming.UsageError
	if errors.As(err, &usage) && cmd != nil {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return err
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// VersionCmd prints the release version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taogen v%s\n", tao.Version)
		},
	}
}
