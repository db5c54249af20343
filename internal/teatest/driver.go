// Package teatest drives bubbletea models synchronously in tests: Update
// is called directly and returned commands are executed inline, so a test
// observes every state transition without goroutines or a real terminal.
// Commands that block on timers (cursor blink) are run with a short
// timeout and dropped when they do not return in time.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDrainDepth bounds recursive command draining.
const maxDrainDepth = 100

// cmdTimeout separates real commands, which resolve in microseconds,
// from blink timers, which park for roughly half a second.
const cmdTimeout = 10 * time.Millisecond

// Driver holds the model under test and steps it one message at a time.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set when a tea.QuitMsg surfaces during draining. The
	// real runtime intercepts that message, so the driver does too.
	Quitting bool
}

func New(t *testing.T, model tea.Model) *Driver {
	t.Helper()
	return &Driver{T: t, Model: model}
}

// Resize delivers a window size before other processing.
func (d *Driver) Resize(w, h int) {
	d.T.Helper()
	d.Send(tea.WindowSizeMsg{Width: w, Height: h})
}

// Start runs the model's Init command chain.
func (d *Driver) Start() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send dispatches one message through Update and drains the resulting
// commands to completion.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd, 0)
}

// Press sends a printable key.
func (d *Driver) Press(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type sends a string one key at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Press(r)
	}
}

func (d *Driver) PressEnter() { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyEnter}) }
func (d *Driver) PressEsc()   { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyEsc}) }
func (d *Driver) PressUp()    { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyUp}) }
func (d *Driver) PressDown()  { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyDown}) }

// View renders the model as it stands.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDrainDepth {
		d.T.Fatalf("teatest: command drain exceeded depth %d", maxDrainDepth)
		return
	}

	msg := runWithTimeout(cmd)
	if msg == nil || isBlink(msg) {
		return
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if sub != nil {
				d.drain(sub, depth+1)
			}
		}
		return
	}

	if _, quit := msg.(tea.QuitMsg); quit {
		d.Quitting = true
		updated, _ := d.Model.Update(msg)
		d.Model = updated
		return
	}

	updated, next := d.Model.Update(msg)
	d.Model = updated
	d.drain(next, depth+1)
}

func runWithTimeout(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isBlink spots the cursor package's unexported blink messages, which
// chain into blocking timer commands when fed back through Update.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
