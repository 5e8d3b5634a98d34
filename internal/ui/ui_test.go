package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
)

func useMono(t *testing.T) {
	t.Helper()
	prev := Current().Name
	SetTheme("mono")
	t.Cleanup(func() { SetTheme(prev) })
}

func TestLinesEmptyShowsPlaceholder(t *testing.T) {
	useMono(t)
	lines := Lines(nil, false)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], Placeholder)

	lines = Lines([]model.Todo{}, true)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], Placeholder)
}

func TestLinesOneRowPerTodo(t *testing.T) {
	useMono(t)
	todos := []model.Todo{{ID: 1, Text: "milk", Complete: false}, {ID: 2, Text: "eggs", Complete: true}}
	lines := Lines(todos, false)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[ ]")
	assert.Contains(t, lines[0], "milk")
	assert.Contains(t, lines[1], "[x]")
	assert.Contains(t, lines[1], "eggs")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "2"))
}

func TestLinesGrouped(t *testing.T) {
	useMono(t)
	todos := []model.Todo{{ID: 1, Text: "milk", Complete: true}, {ID: 2, Text: "eggs", Complete: true}}
	lines := Lines(todos, true)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Pending\n(none)")
	assert.Contains(t, joined, "Done")
	assert.Less(t, strings.Index(joined, "milk"), strings.Index(joined, "eggs"))
}

func TestListingHasHeaderAndRows(t *testing.T) {
	useMono(t)
	out := Listing([]model.Todo{{ID: 1, Text: "milk", Complete: true}, {ID: 2, Text: "eggs", Complete: false}}, false)
	assert.Contains(t, out, "Todos")
	assert.Contains(t, out, "Total 2")
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, "milk")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "äöü", Truncate("äöüß", 3))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
}

func TestFeedback(t *testing.T) {
	useMono(t)
	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	assert.Equal(t, "x added\n! nope\n", buf.String())
}

func TestUnknownThemeFallsBack(t *testing.T) {
	prev := Current().Name
	t.Cleanup(func() { SetTheme(prev) })
	SetTheme("sepia")
	assert.Equal(t, "classic", Current().Name)
}
