package main

import (
	"context"
	"errors"
	"time"

	"github.com/KernelPryanic/fs-manager/internal/ui"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive session shell",
	Long: `Open a session over the base directory and run the interactive shell on
it. The shell exposes the session operations as typed commands (help lists
them) and renders position, hierarchy and hashsum batch progress live.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	uiHandler := ui.NewHandler(ctx, cancel, sess)

	// While the shell owns the screen, logs go to its viewport instead.
	logRouter.Detach("terminal")
	logRouter.Attach("shell", tint.NewHandler(uiHandler.LogWriter, &tint.Options{
		Level:      logLevel(),
		TimeFormat: time.Kitchen,
		NoColor:    true,
	}))

	defer func() {
		logRouter.Detach("shell")
		logRouter.Attach("terminal", terminalSink(logLevel()))
	}()

	var errs []error

	if err := uiHandler.Launch(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, err)
	}

	if err := sess.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
