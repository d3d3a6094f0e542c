// Package tui is the terminal front end: a todo tab with per-row editing and
// an ambient tab listing the sound catalog. All todo changes go through
// todolist.Controller, so the list updates before the server answers.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/todolist"
)

// Tab identifies a top-level view.
type Tab int

const (
	TabTodo Tab = iota
	TabAmbient
)

var tabTitles = []string{"Todo", "Ambient"}

// todosChangedMsg is sent when the cached todo list was written.
type todosChangedMsg struct{}

// toastMsg carries one toast from the controller.
type toastMsg todolist.Toast

// soundsLoadedMsg is sent when the sound catalog has been fetched.
type soundsLoadedMsg struct {
	sounds []api.Sound
	err    error
}

// refreshedMsg is sent after an explicit refresh finished.
type refreshedMsg struct {
	err error
}

// SoundLoader fetches the sound catalog.
type SoundLoader func(ctx context.Context) ([]api.Sound, error)

// Options configures a Model.
type Options struct {
	Sounds SoundLoader
	Toasts *todolist.ToastQueue
	Keys   *KeyMap
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	ctrl   *todolist.Controller
	loader SoundLoader
	toasts *todolist.ToastQueue
	keys   *KeyMap
	help   help.Model

	tab       Tab
	todos     []api.Todo
	cursor    int
	rows      map[string]*rowState
	editingID string

	adding   bool
	addInput textinput.Model

	sounds      []api.Sound
	soundsErr   error
	soundCursor int

	status      string
	statusError bool

	width  int
	height int
}

// New creates the root model.
func New(ctx context.Context, ctrl *todolist.Controller, opts Options) Model {
	if opts.Keys == nil {
		opts.Keys = DefaultKeyMap()
	}

	ai := textinput.New()
	ai.Placeholder = "What needs to be done?"
	ai.Prompt = "+ "
	ai.CharLimit = maxNameLength

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		loader:   opts.Sounds,
		toasts:   opts.Toasts,
		keys:     opts.Keys,
		help:     help.New(),
		todos:    ctrl.Todos(),
		rows:     make(map[string]*rowState),
		addInput: ai,
		width:    80,
		height:   24,
	}
}

// Init starts the initial fetches and the cache and toast listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresh(false), m.waitForChange()}
	if m.toasts != nil {
		cmds = append(cmds, m.waitForToast())
	}
	if m.loader != nil {
		cmds = append(cmds, m.loadSounds())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.addInput.Width = msg.Width - 8
		return m, nil

	case todosChangedMsg:
		m.syncTodos()
		return m, m.waitForChange()

	case toastMsg:
		m.status = msg.Message
		m.statusError = msg.Kind == todolist.ToastError
		return m, m.waitForToast()

	case soundsLoadedMsg:
		m.sounds, m.soundsErr = msg.sounds, msg.err
		return m, nil

	case refreshedMsg:
		m.syncTodos()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.adding {
			return m.handleAddKeys(msg)
		}
		if m.editingID != "" {
			return m.handleEditKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}
	return m, nil
}

// handleNormalKeys processes keys while no text field has focus.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % Tab(len(tabTitles))
		return m, nil
	}

	if m.tab == TabAmbient {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.soundCursor > 0 {
				m.soundCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.soundCursor < len(m.sounds)-1 {
				m.soundCursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadSounds()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.addInput.Reset()
		return m, m.addInput.Focus()

	case key.Matches(msg, m.keys.Edit):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = todo.ID
		return m, m.row(todo.ID).begin(todo.Name)

	case key.Matches(msg, m.keys.Toggle):
		if todo, ok := m.selected(); ok {
			m.ctrl.Toggle(m.ctx, todo.ID)
			m.syncTodos()
		}

	case key.Matches(msg, m.keys.Delete):
		if todo, ok := m.selected(); ok {
			m.ctrl.Delete(m.ctx, todo.ID)
			m.syncTodos()
		}

	case key.Matches(msg, m.keys.ClearCompleted):
		m.ctrl.ClearCompleted(m.ctx)
		m.syncTodos()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(true)
	}
	return m, nil
}

// handleEditKeys processes keys while a row is in Editing. Keys go to the
// edited row by id, wherever the list has moved it.
func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	todo, ok := m.todoByID(m.editingID)
	row := m.rows[m.editingID]
	if !ok || row == nil {
		m.stopEditing()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		name := row.value()
		if name == "" {
			m.status, m.statusError = "Name is required.", true
			return m, nil
		}
		if name != todo.Name {
			m.ctrl.Rename(m.ctx, todo.ID, name)
		}
		m.stopEditing()
		m.syncTodos()
		return m, nil
	}

	return m, row.update(msg)
}

// handleAddKeys processes keys while the add form has focus.
func (m Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.addInput.Blur()
		m.addInput.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		name := m.addInput.Value()
		m.ctrl.Create(m.ctx, name)
		if name == "" {
			return m, nil
		}
		m.adding = false
		m.addInput.Blur()
		m.addInput.Reset()
		m.syncTodos()
		m.cursor = len(m.todos) - 1
		return m, nil
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("lofi playground"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case TabAmbient:
		b.WriteString(m.renderSounds())
	default:
		b.WriteString(m.renderTodos())
	}

	b.WriteString("\n")
	if m.status != "" {
		style := successStyle
		if m.statusError {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	bindings := m.keys.ShortHelp()
	if m.adding || m.editingID != "" {
		bindings = m.keys.FormHelp()
	}
	b.WriteString(helpStyle.Render(m.help.ShortHelpView(bindings)))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		if Tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = tabStyle.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m Model) renderTodos() string {
	var b strings.Builder

	if len(m.todos) == 0 {
		b.WriteString(rowStyle.Render(helpStyle.Render("Nothing to do. Press a to add a todo.")))
		b.WriteString("\n")
	}

	done := 0
	for i, todo := range m.todos {
		if todo.Completed {
			done++
		}

		var line string
		if m.modeOf(todo.ID) == Editing {
			line = m.rows[todo.ID].input.View()
		} else {
			check := "[ ]"
			name := todo.Name
			switch {
			case todolist.IsDraft(todo.ID):
				name = draftStyle.Render(name + " (saving)")
			case todo.Completed:
				check = "[x]"
				name = completedStyle.Render(name)
			}
			line = check + " " + name
		}

		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(m.addInput.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d of %d done", done, len(m.todos))))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderSounds() string {
	if m.soundsErr != nil {
		return errorStyle.Render("Could not load sounds: "+m.soundsErr.Error()) + "\n"
	}
	if len(m.sounds) == 0 {
		return helpStyle.Render("Loading sounds...") + "\n"
	}

	var b strings.Builder
	for i, s := range m.sounds {
		line := fmt.Sprintf("%s  %s", s.Title, helpStyle.Render(s.Href))
		if i == m.soundCursor {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// syncTodos copies the cached list into the model and drops edit state of
// rows that no longer exist. The cursor follows the edited row, or else the
// selected row, when other rows appear or disappear around it.
func (m *Model) syncTodos() {
	follow := m.editingID
	if follow == "" {
		if todo, ok := m.selected(); ok {
			follow = todo.ID
		}
	}

	m.todos = m.ctrl.Todos()
	present := make(map[string]bool, len(m.todos))
	for i, t := range m.todos {
		present[t.ID] = true
		if t.ID == follow {
			m.cursor = i
		}
	}
	for id := range m.rows {
		if !present[id] {
			delete(m.rows, id)
		}
	}
	if !present[m.editingID] {
		m.editingID = ""
	}
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (api.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return api.Todo{}, false
	}
	return m.todos[m.cursor], true
}

// row returns the edit state of id, creating it in Viewing.
func (m Model) row(id string) *rowState {
	r, ok := m.rows[id]
	if !ok {
		r = newRowState()
		m.rows[id] = r
	}
	return r
}

func (m Model) todoByID(id string) (api.Todo, bool) {
	for _, t := range m.todos {
		if t.ID == id {
			return t, true
		}
	}
	return api.Todo{}, false
}

// stopEditing returns the edited row, if any, to Viewing.
func (m *Model) stopEditing() {
	if r, ok := m.rows[m.editingID]; ok {
		r.finish()
	}
	m.editingID = ""
}

// modeOf reports the edit mode of id.
func (m Model) modeOf(id string) EditMode {
	if r, ok := m.rows[id]; ok {
		return r.mode
	}
	return Viewing
}

func (m Model) refresh(force bool) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: ctrl.Refresh(ctx, force)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changed := m.ctrl.Changed()
	return func() tea.Msg {
		<-changed
		return todosChangedMsg{}
	}
}

func (m Model) waitForToast() tea.Cmd {
	if m.toasts == nil {
		return nil
	}
	ch := m.toasts.C()
	return func() tea.Msg {
		return toastMsg(<-ch)
	}
}

func (m Model) loadSounds() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		sounds, err := loader(ctx)
		return soundsLoadedMsg{sounds: sounds, err: err}
	}
}
