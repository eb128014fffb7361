package main

import (
	"errors"
	"fmt"

	"greg-hacke/photosnorm/config"
	"greg-hacke/photosnorm/logging"
	"greg-hacke/photosnorm/normalize"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// errFilesFailed makes the process exit 1 once every file was reported
var errFilesFailed = errors.New("one or more files failed")

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	jobs       int
	recursive  bool
}

// settings is the configuration after flag overrides
var settings config.Config

func newRootCmd() *cobra.Command {
	rootFlags.configPath, rootFlags.logLevel, rootFlags.logFormat = "", "", ""
	rootFlags.jobs, rootFlags.recursive = 0, false

	rootCmd := &cobra.Command{
		Use:   "PhotosNorm",
		Short: "Inspect and normalize photo metadata",
		Long: "PhotosNorm prints photo metadata, writes descriptions and dates into EXIF,\n" +
			"and fixes dimensions, orientation and file names in place.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version:           version,
		PersistentPreRunE: setup,
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Config file (default $"+config.EnvPath+" or the user config dir)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")
	f.IntVarP(&rootFlags.jobs, "jobs", "j", 0, "Files processed concurrently (default number of CPUs)")
	f.BoolVarP(&rootFlags.recursive, "recursive", "r", false, "Walk folders recursively")

	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newFixCmd())
	return rootCmd
}

// setup loads the config file, applies flag overrides and starts logging
func setup(cmd *cobra.Command, _ []string) error {
	path, required := rootFlags.configPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = rootFlags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = rootFlags.logFormat
	}
	if flags.Changed("jobs") {
		cfg.Jobs = rootFlags.jobs
	}
	if flags.Changed("recursive") {
		cfg.Recursive = rootFlags.recursive
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	logging.New("cli").Debug("configuration loaded", "path", path, "jobs", cfg.Jobs, "recursive", cfg.Recursive)

	settings = cfg
	// Arguments are valid from here on; failures are not usage errors
	cmd.SilenceUsage = true
	return nil
}

func newRunner() *normalize.Runner {
	return normalize.NewRunner(normalize.Options{Jobs: settings.Jobs, Recursive: settings.Recursive})
}

func exitStatus(results []normalize.Result) error {
	if normalize.Failed(results) {
		return fmt.Errorf("%w (%d of %d)", errFilesFailed, normalize.Count(results)[normalize.StatusFailed], len(results))
	}
	return nil
}
