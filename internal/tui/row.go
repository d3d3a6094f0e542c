package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EditMode is the state of one row.
type EditMode int

const (
	Viewing EditMode = iota
	Editing
)

const maxNameLength = 200

// rowState holds the edit state of one todo row. Leaving Editing always
// discards the draft text.
type rowState struct {
	mode  EditMode
	input textinput.Model
}

func newRowState() *rowState {
	ti := textinput.New()
	ti.Prompt = "✎ "
	ti.CharLimit = maxNameLength
	return &rowState{mode: Viewing, input: ti}
}

// begin enters Editing with the current name as the initial text.
func (r *rowState) begin(name string) tea.Cmd {
	r.mode = Editing
	r.input.SetValue(name)
	r.input.CursorEnd()
	return r.input.Focus()
}

// finish returns to Viewing.
func (r *rowState) finish() {
	r.mode = Viewing
	r.input.Blur()
	r.input.Reset()
}

func (r *rowState) value() string {
	return r.input.Value()
}

func (r *rowState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return cmd
}
