package store

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
)

// Seed is the collection used for an empty slot when Options.Seed is set.
var Seed = []model.Todo{
	{ID: 1, Text: "Run a marathon", Complete: false},
	{ID: 2, Text: "Plant a garden", Complete: false},
}

// Options tune how a Store loads and persists.
type Options struct {
	Key    string      // slot name; DefaultKey when empty
	Seed   bool        // use Seed when the slot is empty or missing
	Logger *log.Logger // nil discards
}

// Store holds the ordered todo collection and persists the full snapshot
// after every mutation. It is not safe for concurrent use.
type Store struct {
	kv       KV
	key      string
	log      *log.Logger
	todos    []model.Todo
	onChange func([]model.Todo)
	err      error
}

// New loads the collection from kv once. Load problems never fail: a broken
// snapshot becomes an empty collection and is reported through the logger.
func New(kv KV, opt Options) *Store {
	s := &Store{
		kv:  kv,
		key: opt.Key,
		log: opt.Logger,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	s.todos = s.load(opt.Seed)
	return s
}

func (s *Store) load(seed bool) []model.Todo {
	b, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.log.Warn("read snapshot failed, starting empty", "key", s.key, "err", err)
		return []model.Todo{}
	}
	var todos []model.Todo
	if ok {
		todos, err = decodeSnapshot(b)
		if err != nil {
			s.log.Warn("malformed snapshot, starting empty", "key", s.key, "err", err)
			return []model.Todo{}
		}
	}
	if todos == nil {
		if seed {
			s.log.Debug("slot empty, using seed", "key", s.key)
			return append([]model.Todo(nil), Seed...)
		}
		return []model.Todo{}
	}
	s.log.Debug("loaded snapshot", "key", s.key, "count", len(todos))
	return todos
}

// Subscribe registers the store-change callback, replacing any previous one.
func (s *Store) Subscribe(fn func([]model.Todo)) {
	s.onChange = fn
}

// Todos returns a copy of the current collection.
func (s *Store) Todos() []model.Todo {
	return append([]model.Todo{}, s.todos...)
}

// Err returns the last persist error, if any.
func (s *Store) Err() error { return s.err }

// Add appends a new incomplete todo with the next id. It reports false,
// changing nothing, once the id space is used up.
func (s *Store) Add(text string) bool {
	next, ok := model.Append(s.todos, text)
	if !ok {
		s.log.Warn("no todo ids left, not adding", "max", model.MaxID)
		return false
	}
	s.commit(next)
	return true
}

// Edit replaces the text of the todo with id. Unknown ids are ignored.
func (s *Store) Edit(id int, text string) {
	if next, ok := model.Edit(s.todos, id, text); ok {
		s.commit(next)
	}
}

// Delete removes the todo with id. Unknown ids are ignored.
func (s *Store) Delete(id int) {
	if next, ok := model.Delete(s.todos, id); ok {
		s.commit(next)
	}
}

// Toggle flips the completion flag of the todo with id. Unknown ids are ignored.
func (s *Store) Toggle(id int) {
	if next, ok := model.Toggle(s.todos, id); ok {
		s.commit(next)
	}
}

// Has reports whether a todo with id exists.
func (s *Store) Has(id int) bool {
	_, ok := model.Find(s.todos, id)
	return ok
}

// commit swaps in the new collection, notifies, then persists.
func (s *Store) commit(next []model.Todo) {
	s.todos = next
	if s.onChange != nil {
		s.onChange(s.Todos())
	}
	s.err = s.persist()
}

func (s *Store) persist() error {
	b, err := encodeSnapshot(s.todos)
	if err != nil {
		s.log.Error("encode snapshot", "err", err)
		return err
	}
	if err := s.kv.Set(s.key, b); err != nil {
		s.log.Error("write snapshot", "key", s.key, "err", err)
		return err
	}
	return nil
}

// Close releases the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}
