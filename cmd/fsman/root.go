package main

import (
	"log/slog"

	"github.com/KernelPryanic/fs-manager/internal/configuration"
	"github.com/KernelPryanic/fs-manager/internal/session"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	flagBase       string
	flagEnvFile    string
	flagConfig     string
	flagTemporary  bool
	flagRandPrefix bool
	flagRootBound  bool
	flagVerbose    bool

	rootCmd = &cobra.Command{
		Use:   "fsman",
		Short: "Manage a stateful session over one base directory",
		Long: `fsman opens a navigable session over one base directory: an alias-indexed
logical hierarchy with a movable position inside it, persisted as a JSON
structure document next to the managed files, with per-file hashsum
capture and verification on top.

Session defaults are layered from baked-in defaults, a KEY=VALUE
environment file (--env-file), a YAML/JSON override file (--config) and
the command-line flags, in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flagVerbose {
				logRouter.Attach("terminal", terminalSink(slog.LevelDebug))
			}
		},
	}
)

func init() {
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVarP(&flagBase, "base", "b", "", "base directory of the session")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "KEY=VALUE environment file with session defaults")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML/JSON override file with session defaults")
	rootCmd.PersistentFlags().BoolVar(&flagTemporary, "temporary", false, "remove the base directory when the session ends")
	rootCmd.PersistentFlags().BoolVar(&flagRandPrefix, "rand-prefix", false, "root the session inside a randomized directory underneath the base")
	rootCmd.PersistentFlags().BoolVar(&flagRootBound, "root-bound", false, "allow navigation to any directory of the hierarchy")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug information")
}

// sessionConfiguration layers the session defaults of all configuration
// sources in order of precedence. Boolean flags count as set only when
// given on the command line, so a file-configured value survives an
// untouched flag.
func sessionConfiguration(cmd *cobra.Command) (*configuration.AppConfiguration, error) {
	config := configuration.NewAppConfiguration()

	if flagEnvFile != "" {
		configHandler := configuration.NewHandler(&configuration.EnvFileProvider{})

		envMap, err := configHandler.ReadGeneric(flagEnvFile)
		if err != nil {
			return nil, err
		}

		config.Merge(configHandler.OverrideFromEnv(envMap))
	}

	if flagConfig != "" {
		override, err := configuration.LoadOverrideFile(flagConfig)
		if err != nil {
			return nil, err
		}

		config.Merge(override)
	}

	override := &configuration.Override{}
	if cmd.Flags().Changed("base") {
		override.BasePath = &flagBase
	}
	if cmd.Flags().Changed("temporary") {
		override.Temporary = &flagTemporary
	}
	if cmd.Flags().Changed("rand-prefix") {
		override.RandPrefix = &flagRandPrefix
	}
	if cmd.Flags().Changed("root-bound") {
		override.RootBound = &flagRootBound
	}
	config.Merge(override)

	return config, nil
}

// openSession establishes the session a subcommand operates on, from the
// layered configuration.
func openSession(cmd *cobra.Command) (*session.Session, error) {
	config, err := sessionConfiguration(cmd)
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(session.Options{
		BasePath:     config.BasePath,
		DirMode:      config.DirMode,
		FileMode:     config.FileMode,
		Temporary:    config.Temporary,
		RandPrefix:   config.RandPrefix,
		RootBound:    config.RootBound,
		Algorithm:    config.Algorithm,
		DocumentName: config.DocumentName,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Session opened.",
		"base", sess.Base(),
		"temporary", sess.Temporary(),
		"nodes", sess.Tree().Len(),
	)

	return sess, nil
}
