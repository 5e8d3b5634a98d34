package store

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

func newMemoryStore(t *testing.T) (*Store, *Memory) {
	t.Helper()
	kv := NewMemory()
	return New(kv, Options{}), kv
}

func TestEmptySlotLoadsEmpty(t *testing.T) {
	s, _ := newMemoryStore(t)
	assert.Empty(t, s.Todos())
	assert.NotNil(t, s.Todos())
}

func TestSeedAppliesOnlyToEmptySlot(t *testing.T) {
	s := New(NewMemory(), Options{Seed: true})
	if diff := cmp.Diff(Seed, s.Todos()); diff != "" {
		t.Errorf("seed mismatch (-want +got):\n%s", diff)
	}

	kv := NewMemory()
	require.NoError(t, kv.Set(DefaultKey, []byte(`[{"id":4,"text":"mine","complete":true}]`)))
	s = New(kv, Options{Seed: true})
	assert.Equal(t, []model.Todo{{ID: 4, Text: "mine", Complete: true}}, s.Todos())
}

func TestAddAssignsIDsInOrder(t *testing.T) {
	s, _ := newMemoryStore(t)
	for _, text := range []string{"a", "b", "c", "d"} {
		s.Add(text)
	}
	got := s.Todos()
	require.Len(t, got, 4)
	for i, td := range got {
		assert.Equal(t, i+1, td.ID)
		assert.False(t, td.Complete)
	}
}

func TestWorkedExample(t *testing.T) {
	s, kv := newMemoryStore(t)

	s.Add("A")
	assert.Equal(t, []model.Todo{{ID: 1, Text: "A"}}, s.Todos())

	s.Add("B")
	assert.Equal(t, 2, s.Todos()[1].ID)

	s.Toggle(1)
	assert.True(t, s.Todos()[0].Complete)

	s.Delete(2)
	assert.Equal(t, []model.Todo{{ID: 1, Text: "A", Complete: true}}, s.Todos())

	s.Edit(1, "A2")
	want := []model.Todo{{ID: 1, Text: "A2", Complete: true}}
	if diff := cmp.Diff(want, s.Todos()); diff != "" {
		t.Errorf("final state mismatch (-want +got):\n%s", diff)
	}

	reloaded := New(kv, Options{})
	if diff := cmp.Diff(want, reloaded.Todos()); diff != "" {
		t.Errorf("reload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscribeNotifiesWithSnapshot(t *testing.T) {
	s, _ := newMemoryStore(t)
	var calls [][]model.Todo
	s.Subscribe(func(todos []model.Todo) { calls = append(calls, todos) })

	s.Add("a")
	s.Toggle(1)
	s.Toggle(42) // unknown: no notification
	s.Edit(42, "x")
	s.Delete(42)

	require.Len(t, calls, 2)
	assert.Equal(t, []model.Todo{{ID: 1, Text: "a"}}, calls[0])
	assert.Equal(t, []model.Todo{{ID: 1, Text: "a", Complete: true}}, calls[1])

	calls[1][0].Text = "mutated"
	assert.Equal(t, "a", s.Todos()[0].Text, "subscribers get a copy")
}

func TestUnknownIDDoesNotWrite(t *testing.T) {
	kv := &countingKV{Memory: NewMemory()}
	s := New(kv, Options{})
	s.Add("a")
	require.Equal(t, 1, kv.sets)

	s.Edit(9, "x")
	s.Toggle(9)
	s.Delete(9)
	assert.Equal(t, 1, kv.sets)
}

func TestMalformedSnapshotLoadsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"object", `{"id":1}`},
		{"missing text", `[{"id":1,"complete":false}]`},
		{"empty text", `[{"id":1,"text":"","complete":false}]`},
		{"zero id", `[{"id":0,"text":"a","complete":false}]`},
		{"fractional id", `[{"id":1.5,"text":"a","complete":false}]`},
		{"id beyond safe integer", `[{"id":9223372036854775807,"text":"a","complete":false}]`},
		{"duplicate ids", `[{"id":1,"text":"a","complete":false},{"id":1,"text":"b","complete":false}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			kv := NewMemory()
			require.NoError(t, kv.Set(DefaultKey, []byte(tt.raw)))

			s := New(kv, Options{Seed: true, Logger: log.New(&buf)})
			assert.Empty(t, s.Todos())
			assert.Contains(t, buf.String(), "malformed snapshot")
		})
	}
}

func TestAddAtMaxIDKeepsCollection(t *testing.T) {
	var buf bytes.Buffer
	kv := &countingKV{Memory: NewMemory()}
	raw := fmt.Sprintf(`[{"id":%d,"text":"last","complete":false}]`, model.MaxID)
	require.NoError(t, kv.Memory.Set(DefaultKey, []byte(raw)))

	s := New(kv, Options{Logger: log.New(&buf)})
	want := []model.Todo{{ID: model.MaxID, Text: "last"}}
	require.Equal(t, want, s.Todos())

	var notified bool
	s.Subscribe(func([]model.Todo) { notified = true })
	assert.False(t, s.Add("one more"))
	assert.False(t, notified)
	assert.Equal(t, 0, kv.sets)
	assert.Contains(t, buf.String(), "no todo ids left")

	reloaded := New(kv, Options{})
	assert.Equal(t, want, reloaded.Todos())
	for _, td := range reloaded.Todos() {
		assert.Positive(t, td.ID)
	}
}

func TestNullOrBlankSnapshotIsEmptySlot(t *testing.T) {
	for _, raw := range []string{"", "  \n", "null"} {
		kv := NewMemory()
		require.NoError(t, kv.Set(DefaultKey, []byte(raw)))
		s := New(kv, Options{Seed: true})
		assert.Equal(t, Seed, s.Todos(), "raw %q", raw)
	}
}

func TestHandEditedSnapshotIsAccepted(t *testing.T) {
	kv := NewMemory()
	raw := `[
  // groceries
  {"id": 3, "text": "milk", "complete": false},
  {"id": 5, "text": "eggs", "complete": true},
]`
	require.NoError(t, kv.Set(DefaultKey, []byte(raw)))

	s := New(kv, Options{})
	s.Add("bread")
	want := []model.Todo{
		{ID: 3, Text: "milk"},
		{ID: 5, Text: "eggs", Complete: true},
		{ID: 6, Text: "bread"},
	}
	if diff := cmp.Diff(want, s.Todos()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistFailureIsRetained(t *testing.T) {
	var buf bytes.Buffer
	s := New(failingKV{}, Options{Logger: log.New(&buf)})

	var notified bool
	s.Subscribe(func([]model.Todo) { notified = true })
	s.Add("a")

	assert.True(t, notified)
	assert.Len(t, s.Todos(), 1)
	require.Error(t, s.Err())
	assert.Contains(t, buf.String(), "write snapshot")
}

func TestFileRoundTrip(t *testing.T) {
	kv, err := jsonstore.New(t.TempDir())
	require.NoError(t, err)

	s := New(kv, Options{})
	s.Add("one")
	s.Add("two")
	s.Toggle(2)
	s.Add("three")
	s.Delete(1)
	require.NoError(t, s.Err())

	reloaded := New(kv, Options{})
	if diff := cmp.Diff(s.Todos(), reloaded.Todos()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyCollectionPersistsAsArray(t *testing.T) {
	s, kv := newMemoryStore(t)
	s.Add("a")
	s.Delete(1)

	b, ok, err := kv.Get(DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(b))
}

type countingKV struct {
	*Memory
	sets int
}

func (c *countingKV) Set(key string, value []byte) error {
	c.sets++
	return c.Memory.Set(key, value)
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (failingKV) Set(string, []byte) error         { return errors.New("disk full") }
func (failingKV) Close() error                     { return nil }
