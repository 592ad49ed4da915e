package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
)

const stackTraceBufMax = 1 << 24

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	logRouter = NewLogRouter()
)

// logLevel maps the verbosity flag to the terminal logging level.
func logLevel() slog.Level {
	if flagVerbose {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

// terminalSink returns a tinted [slog.Handler] writing to the terminal.
func terminalSink(level slog.Level) slog.Handler {
	return tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

func setupLogging() {
	logRouter.Attach("terminal", terminalSink(slog.LevelInfo))
	slog.SetDefault(slog.New(logRouter))
}

// watchSignals cancels the program context on a termination signal and
// serves the diagnostic signals for stack dumps and forced collections.
func watchSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		for sig := range sigChan {
			switch sig {
			case syscall.SIGUSR1:
				buf := make([]byte, stackTraceBufMax)
				stacklen := runtime.Stack(buf, true)
				os.Stderr.Write(buf[:stacklen])
			case syscall.SIGUSR2:
				runtime.GC()
			default:
				cancel()
			}
		}
	}()
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupLogging()
	watchSignals(cancel)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ExitCode = 1
	}
}
