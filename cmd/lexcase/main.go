package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lexcase/internal/version"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the CLI entry point, extracted for testing.
func Execute(args []string) error {
	// A missing .env is fine; the environment and config files still apply.
	_ = godotenv.Load()

	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lexcase",
		Short:         "Legal decision support: statute and precedent retrieval with reasoned-ruling drafts",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringP("env", "e", "", "Environment name selecting config/<env>.yaml (default $ENV or local)")
	flags.StringP("config", "c", "", "Explicit config file path (overrides --env lookup)")

	root.AddCommand(
		newServeCmd(),
		newSearchCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
