// Package tui is the interactive Bubble Tea front end: it renders the todo
// collection and turns key presses into intents for the coordinator.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/app"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// SubmitIntent asks for a new todo.
type SubmitIntent struct{ Text string }

// EditIntent commits new text for an existing todo.
type EditIntent struct {
	ID   int
	Text string
}

// DeleteIntent removes a todo.
type DeleteIntent struct{ ID int }

// ToggleIntent flips a todo's completion flag.
type ToggleIntent struct{ ID int }

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// listItem adapts a Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) FilterValue() string { return i.todo.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	line := fmt.Sprintf("%s %s", ui.Box(it.todo), ui.Text(it.todo))
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
		line += t.Muted.Render("   e edit · d delete")
	}
	fmt.Fprint(w, prefix+line)
}

// errReporter is implemented by stores that remember their last save error.
type errReporter interface {
	Err() error
}

// Model is the Bubble Tea model. It is also the coordinator's View:
// every store change lands in Display, which rebuilds the whole list.
type Model struct {
	ctrl  *app.Controller
	errs  errReporter // nil when the store cannot report
	keys  keyMap
	list  list.Model
	todos []model.Todo

	mode     mode
	ti       textinput.Model // shared for add & edit
	editID   int
	inputErr string

	width, height int
	pending       tea.Cmd
}

// New builds the model and binds it to s.
func New(s app.Store) *Model {
	m := &Model{keys: defaultKeys()}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle()
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = m.keys.listHelp
	l.AdditionalFullHelpKeys = m.keys.listHelp
	l.KeyMap.Quit.SetEnabled(false)
	m.list = l

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = 200

	if er, ok := s.(errReporter); ok {
		m.errs = er
	}
	m.ctrl = app.New(s, m)
	return m
}

// Display throws away the current rows and rebuilds one per todo.
func (m *Model) Display(todos []model.Todo) {
	m.todos = todos
	items := make([]list.Item, 0, len(todos))
	for _, td := range todos {
		items = append(items, listItem{todo: td})
	}
	idx := m.list.Index()
	m.pending = m.list.SetItems(items)
	m.list.Title = ui.Header(todos)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

// Todos returns what is currently displayed.
func (m *Model) Todos() []model.Todo { return m.todos }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if m.pending != nil {
		cmd = tea.Batch(cmd, m.pending)
		m.pending = nil
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return nil
	case SubmitIntent, EditIntent, DeleteIntent, ToggleIntent:
		m.dispatch(msg)
		return nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return tea.Quit
		}
		switch m.mode {
		case adding, editing:
			return m.updateInput(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateBrowse(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
			return nil
		}
		return tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.startInput(adding, 0, "", "New todo...")
		return textinput.Blink
	case key.Matches(msg, m.keys.Edit):
		if td, ok := m.selected(); ok {
			m.startInput(editing, td.ID, td.Text, "Edit todo...")
			return textinput.Blink
		}
		return nil
	case key.Matches(msg, m.keys.Toggle):
		if td, ok := m.selected(); ok {
			m.dispatch(ToggleIntent{ID: td.ID})
		}
		return nil
	case key.Matches(msg, m.keys.Delete):
		if td, ok := m.selected(); ok {
			m.dispatch(DeleteIntent{ID: td.ID})
		}
		return nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if model.CleanText(m.ti.Value()) == "" {
			m.inputErr = "Text cannot be empty"
			return nil
		}
		var intent tea.Msg = SubmitIntent{Text: m.ti.Value()}
		if m.mode == editing {
			intent = EditIntent{ID: m.editID, Text: m.ti.Value()}
		}
		if !m.dispatch(intent) {
			m.inputErr = "No todo ids left"
			return nil
		}
		m.stopInput()
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.stopInput()
		return nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return cmd
}

// dispatch hands an intent to the coordinator. It reports false when the
// input was rejected at the boundary (blank text).
func (m *Model) dispatch(intent tea.Msg) bool {
	switch in := intent.(type) {
	case SubmitIntent:
		if !m.ctrl.HandleAdd(in.Text) {
			return false
		}
		m.list.ResetFilter()
		m.list.Select(len(m.list.Items()) - 1)
	case EditIntent:
		return m.ctrl.HandleEdit(in.ID, in.Text)
	case DeleteIntent:
		m.ctrl.HandleDelete(in.ID)
	case ToggleIntent:
		m.ctrl.HandleToggle(in.ID)
	}
	return true
}

func (m *Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) startInput(md mode, id int, value, placeholder string) {
	m.mode = md
	m.editID = id
	m.inputErr = ""
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	m.ti.Placeholder = placeholder
	m.ti.Focus()
	m.resize()
}

func (m *Model) stopInput() {
	m.mode = browsing
	m.editID = 0
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 4
	if m.mode != browsing {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
}

func (m *Model) View() string {
	t := ui.Current()
	var content string
	if len(m.todos) == 0 {
		content = strings.Join([]string{
			ui.Header(m.todos),
			"",
			t.Muted.Render(ui.Placeholder),
			"",
			t.Muted.Render("a add • q quit"),
		}, "\n")
	} else {
		content = m.list.View()
	}

	if err := m.saveErr(); err != nil {
		content += "\n" + t.Error.Render(t.SymFail+" save failed: "+err.Error())
	}

	if m.mode != browsing {
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		title := "Add todo"
		if m.mode == editing {
			title = fmt.Sprintf("Edit todo #%d", m.editID)
		}
		if m.inputErr != "" {
			title += "  " + t.Error.Render(m.inputErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	return ui.Panel([]string{content})
}

func (m *Model) saveErr() error {
	if m.errs == nil {
		return nil
	}
	return m.errs.Err()
}

// Run starts the interactive list. Every change is persisted by the store as
// it happens, so quitting needs no save step.
func Run(ctx context.Context, s app.Store) error {
	p := tea.NewProgram(New(s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
