// Package ui implements the interactive session shell as a command-line
// user interface using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/KernelPryanic/fs-manager/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Handler drives the interactive shell over one session. It owns the
// [tea.Program], the log writer feeding the shell viewport and the
// readiness state of the screen.
type Handler struct {
	session *session.Session
	program *tea.Program

	LogWriter *TeaLogWriter

	Ready  atomic.Bool
	Failed atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler] driving
// the given [session.Session]. The program renders on the alternate
// screen and ends with the given context.
func NewHandler(ctx context.Context, cancel context.CancelFunc, sess *session.Session) *Handler {
	h := &Handler{
		session: sess,
	}

	model := NewTeaModel(h, sess, cancel)
	h.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	h.LogWriter = NewTeaLogWriter(h.program)

	return h
}

// Launch runs the user interface until the program ends; a launch or
// runtime failure is also flagged through [Handler.Failed].
func (h *Handler) Launch() error {
	defer h.LogWriter.Stop()

	if _, err := h.program.Run(); err != nil {
		h.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}
