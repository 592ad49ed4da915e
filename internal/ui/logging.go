package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// LogMsg is one rendered log line on its way into the shell viewport. It
// is typed for identification as [tea.Msg] within a [tea.Program].
type LogMsg string

// logFeedCapacity bounds the in-flight log lines; writers drop lines
// beyond it rather than stall the logging path.
const logFeedCapacity = 1000

// teaProgramProvider describes the message delivery of a [tea.Program],
// so that log routing stays testable without a running program.
type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// TeaLogWriter is an [io.Writer] bridging a [slog.Handler] into a
// [tea.Program]: written lines travel through a buffered feed and arrive
// in the program as [LogMsg]. A pump goroutine decouples the writing
// side from the program's message loop.
type TeaLogWriter struct {
	program teaProgramProvider
	feed    chan LogMsg
	quit    chan struct{}
	halt    sync.Once
}

// NewTeaLogWriter returns a running [TeaLogWriter] for the given program.
// Stop it with [TeaLogWriter.Stop] once no more logs are expected.
func NewTeaLogWriter(program teaProgramProvider) *TeaLogWriter {
	wr := &TeaLogWriter{
		program: program,
		feed:    make(chan LogMsg, logFeedCapacity),
		quit:    make(chan struct{}),
	}

	go wr.pump()

	return wr
}

// Stop ends the delivery of log lines; it is safe to call more than
// once. Lines written or still in flight after the stop are discarded.
func (wr *TeaLogWriter) Stop() {
	wr.halt.Do(func() {
		close(wr.quit)
	})
}

// pump moves lines from the feed into the program until stopped.
func (wr *TeaLogWriter) pump() {
	for {
		select {
		case <-wr.quit:
			return
		case line := <-wr.feed:
			wr.program.Send(line)
		}
	}
}

// Write queues one rendered log line for delivery into the program. It
// never blocks and never fails: lines written after [TeaLogWriter.Stop]
// are discarded, as are lines beyond a full feed.
func (wr *TeaLogWriter) Write(p []byte) (int, error) {
	select {
	case <-wr.quit:
		return len(p), nil
	default:
	}

	select {
	case wr.feed <- LogMsg(p):
	default:
	}

	return len(p), nil
}
