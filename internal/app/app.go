// Package app binds user intents to store operations and store changes to
// the renderer. Every handler is a stateless pass-through.
package app

import "github.com/Makepad-fr/tada/internal/model"

// View is anything that can redraw the whole collection.
type View interface {
	Display(todos []model.Todo)
}

// Store is the subset of *store.Store the coordinator drives.
type Store interface {
	Todos() []model.Todo
	Subscribe(fn func([]model.Todo))
	Add(text string) bool
	Edit(id int, text string)
	Delete(id int)
	Toggle(id int)
}

// Controller wires a Store to a View.
type Controller struct {
	store Store
	view  View
}

// New subscribes view to store changes and shows the initial collection.
func New(s Store, v View) *Controller {
	c := &Controller{store: s, view: v}
	s.Subscribe(c.onListChanged)
	c.onListChanged(s.Todos())
	return c
}

func (c *Controller) onListChanged(todos []model.Todo) {
	c.view.Display(todos)
}

// HandleAdd submits a new todo. Blank text is dropped here, before the store.
// It reports whether a todo was added.
func (c *Controller) HandleAdd(text string) bool {
	text = model.CleanText(text)
	if text == "" {
		return false
	}
	return c.store.Add(text)
}

// HandleEdit commits new text for id. Blank text is dropped.
func (c *Controller) HandleEdit(id int, text string) bool {
	text = model.CleanText(text)
	if text == "" {
		return false
	}
	c.store.Edit(id, text)
	return true
}

func (c *Controller) HandleDelete(id int) { c.store.Delete(id) }

func (c *Controller) HandleToggle(id int) { c.store.Toggle(id) }
