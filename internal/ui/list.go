package ui

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// Placeholder is shown instead of rows when there is nothing to do.
const Placeholder = "Nothing to do! Add a task?"

const maxTextWidth = 80

// Header is the "Todos ✔ n • n Total n" summary line.
func Header(todos []model.Todo) string {
	t := Current()
	d, p := model.Stats(todos)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(todos),
	)
}

// Box returns the checkbox glyph for a todo, styled.
func Box(td model.Todo) string {
	t := Current()
	if td.Complete {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Muted.Render(t.BoxUnchecked)
}

// Text returns the todo text, truncated and struck through when complete.
func Text(td model.Todo) string {
	s := Truncate(td.Text, maxTextWidth)
	if td.Complete {
		return Current().Done.Render(s)
	}
	return s
}

// Row renders one todo: id, checkbox, text.
func Row(td model.Todo) string {
	return fmt.Sprintf("%s %s %s",
		Current().Muted.Render(fmt.Sprintf("%3d", td.ID)), Box(td), Text(td))
}

// Lines rebuilds the full visible list from the collection.
func Lines(todos []model.Todo, group bool) []string {
	if len(todos) == 0 {
		return []string{Current().Muted.Render(Placeholder)}
	}
	if group {
		return groupLines(todos)
	}
	return flatLines(todos)
}

func flatLines(todos []model.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		out = append(out, Row(td))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	t := Current()
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Complete {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	section := func(title string, items []model.Todo) []string {
		lines := []string{t.Accent.Render(title)}
		if len(items) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		return append(lines, flatLines(items)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// Listing is the full static `ls` view: header, progress, rows, tip.
func Listing(todos []model.Todo, group bool) string {
	t := Current()
	d, _ := model.Stats(todos)
	lines := []string{
		Header(todos),
		t.Muted.Render(ProgressBar(d, len(todos), 28)),
		"",
	}
	lines = append(lines, Lines(todos, group)...)
	lines = append(lines, "", t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	return Panel(lines)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
