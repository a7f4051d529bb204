package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "factreel",
		Short: "Turn a random fact into a narrated short video",
		Long: `factreel fetches a short fact, narrates it, finds matching background
footage and renders a captioned vertical video.

Examples:
  # Render one video from a fetched fact
  factreel run

  # Narrate a given fact instead of fetching one
  factreel run --fact "Octopuses have three hearts."

  # Render five videos one after another
  factreel batch -n 5

  # Serve the HTTP API on the configured host and port
  factreel serve`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (toml, yaml or json); defaults to the application config dir")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with API keys, ignored when absent")
	flags.StringVar(&opts.dbPath, "db", "", "run history database; defaults to the application output dir")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newWorkerCmd(opts),
		newEnqueueCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
		newDiagnoseCmd(opts),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
