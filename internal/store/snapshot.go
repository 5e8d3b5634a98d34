package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tailscale/hujson"

	"github.com/Makepad-fr/tada/internal/model"
)

const snapshotSchemaURL = "tada://todos.schema.json"

const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "complete"],
    "properties": {
      "id": {"type": "integer", "minimum": 1, "maximum": 9007199254740991},
      "text": {"type": "string", "minLength": 1},
      "complete": {"type": "boolean"}
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString(snapshotSchemaURL, snapshotSchema)

// decodeSnapshot parses a persisted collection. Comments and trailing
// commas from hand edits are accepted. A nil result with a nil error
// means the slot holds nothing.
func decodeSnapshot(b []byte) ([]model.Todo, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, nil
	}
	std, err := hujson.Standardize(b)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(std, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}

	var todos []model.Todo
	if err := json.Unmarshal(std, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	seen := make(map[int]struct{}, len(todos))
	for _, t := range todos {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate todo id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return todos, nil
}

func encodeSnapshot(todos []model.Todo) ([]byte, error) {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}
