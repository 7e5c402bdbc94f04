package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/quire/internal/config"
	"github.com/Bitlatte/quire/internal/logger"
)

// app holds state shared by subcommands once configuration is loaded.
type app struct {
	cfgFile   string
	logFormat string
	stderr    io.Writer

	cfg config.Config
	log *logger.Logger
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "quire",
		Short: "quire - a static site generator",
		Long: `quire takes Markdown content with front-matter, renders each document
through the layout it names, and writes a static HTML site to the output
directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initializeConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(newBuildCmd(a), newServeCmd(a), newVersionCmd())
	return rootCmd
}

// Execute runs the CLI and exits non-zero on any error.
func Execute() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) initializeConfig(cmd *cobra.Command) error {
	cfg, used, err := config.Load(config.LoadOptions{
		File:    a.cfgFile,
		EnvFile: ".env",
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return err
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	a.cfg = cfg
	a.log = logger.NewWithWriter(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if used != "" {
		a.log.Debug("using config file", "path", used)
	} else {
		a.log.Debug("no config file found, using defaults and environment")
	}
	return nil
}
