package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"factreel/config"
	"factreel/internal/appdirs"
	"factreel/internal/deps"
	"factreel/log"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func newDiagnoseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Print resolved paths and the external dependency report",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			conf, err := loadConfig(root, nil)
			if err != nil {
				fmt.Fprintf(w, "config: <error: %v>, using defaults\n", err)
				def := config.Default()
				conf = &def
			}
			printDiagnose(w, conf)
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
}

func printDiagnose(w io.Writer, conf *config.Config) {
	fmt.Fprintf(w, "runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "version: %s\n", version)

	if wd, err := os.Getwd(); err == nil {
		fmt.Fprintf(w, "working_dir: %s\n", wd)
	} else {
		fmt.Fprintf(w, "working_dir: <error: %v>\n", err)
	}

	dirs, err := appdirs.Resolve()
	if err != nil {
		fmt.Fprintf(w, "paths: <error: %v>\n", err)
	} else {
		fmt.Fprintf(w, "layout: %s\n", dirs.Layout)
		printPath(w, "config", dirs.ConfigFile)
		printPath(w, "output", dirs.OutputDir)
		printPath(w, "videos", dirs.VideoRoot())
		printPath(w, "history_db", dirs.HistoryDB())
		printPath(w, "cache", dirs.CacheDir)
	}
	if logDir, err := log.ResolveLogDir(); err == nil {
		printPath(w, "effective_log_dir", logDir)
	} else {
		fmt.Fprintf(w, "path.effective_log_dir: <error: %v>\n", err)
	}

	fmt.Fprintf(w, "tts_provider: %s\n", conf.TtsProvider)
	fmt.Fprintf(w, "multi_background: %t\n", conf.MultiBackground)
	fmt.Fprintln(w, deps.FormatDependencyReport(deps.ResolveDependencyInventory(conf)))
}

func printPath(w io.Writer, name, value string) {
	if _, err := os.Stat(value); err == nil {
		fmt.Fprintf(w, "path.%s: %s (exists)\n", name, value)
	} else if os.IsNotExist(err) {
		fmt.Fprintf(w, "path.%s: %s (missing)\n", name, value)
	} else {
		fmt.Fprintf(w, "path.%s: %s (error=%v)\n", name, value, err)
	}
}
