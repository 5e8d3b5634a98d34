package model

import "strings"

// Todo is the domain model for a todo entry.
type Todo struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Complete bool   `json:"complete"`
}

// MaxID is the largest id a todo may carry: the biggest integer a JSON
// number holds exactly.
const MaxID = 1<<53 - 1

// NextID returns max existing id + 1, or 1 for an empty collection.
// It returns 0 once MaxID is taken.
func NextID(todos []Todo) int {
	hi := 0
	for _, t := range todos {
		if t.ID > hi {
			hi = t.ID
		}
	}
	if hi >= MaxID {
		return 0
	}
	return hi + 1
}

// Append returns a new collection with a fresh, incomplete todo at the end.
// It reports false, returning todos unchanged, when no id is left.
func Append(todos []Todo, text string) ([]Todo, bool) {
	id := NextID(todos)
	if id == 0 {
		return todos, false
	}
	out := make([]Todo, 0, len(todos)+1)
	out = append(out, todos...)
	return append(out, Todo{ID: id, Text: text}), true
}

// Edit replaces the text of the todo with the given id.
// The second result reports whether anything matched.
func Edit(todos []Todo, id int, text string) ([]Todo, bool) {
	return replace(todos, id, func(t Todo) Todo {
		return Todo{ID: t.ID, Text: text, Complete: t.Complete}
	})
}

// Toggle flips Complete on the todo with the given id.
func Toggle(todos []Todo, id int) ([]Todo, bool) {
	return replace(todos, id, func(t Todo) Todo {
		return Todo{ID: t.ID, Text: t.Text, Complete: !t.Complete}
	})
}

// Delete filters out the todo with the given id.
func Delete(todos []Todo, id int) ([]Todo, bool) {
	out := make([]Todo, 0, len(todos))
	found := false
	for _, t := range todos {
		if t.ID == id {
			found = true
			continue
		}
		out = append(out, t)
	}
	return out, found
}

func replace(todos []Todo, id int, fn func(Todo) Todo) ([]Todo, bool) {
	out := make([]Todo, len(todos))
	found := false
	for i, t := range todos {
		if t.ID == id {
			t = fn(t)
			found = true
		}
		out[i] = t
	}
	return out, found
}

// Find returns the todo with the given id.
func Find(todos []Todo, id int) (Todo, bool) {
	for _, t := range todos {
		if t.ID == id {
			return t, true
		}
	}
	return Todo{}, false
}

// Stats counts done and pending todos.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Complete {
			done++
		} else {
			pending++
		}
	}
	return
}

// CleanText trims user input; an empty result means the input is rejected.
func CleanText(s string) string {
	return strings.TrimSpace(s)
}
