package fetch

import (
	"encoding/json"
	"fmt"
)

// Upsert returns a merge that replaces the item with the same key or appends
// it. Applying the same payload twice leaves the list unchanged.
func Upsert[T any](key func(T) string) Merge[[]T] {
	return func(current []T, payload json.RawMessage) ([]T, error) {
		var item T
		if err := json.Unmarshal(payload, &item); err != nil {
			return current, fmt.Errorf("upsert: %w", err)
		}
		id := key(item)
		if id == "" {
			return current, fmt.Errorf("upsert: item without key")
		}

		out := make([]T, 0, len(current)+1)
		replaced := false
		for _, existing := range current {
			if key(existing) == id {
				out = append(out, item)
				replaced = true
				continue
			}
			out = append(out, existing)
		}
		if !replaced {
			out = append(out, item)
		}
		return out, nil
	}
}

// Remove returns a merge that drops the item whose key matches the payload's
// "id" field (a bare JSON string id is accepted too).
func Remove[T any](key func(T) string) Merge[[]T] {
	return func(current []T, payload json.RawMessage) ([]T, error) {
		id, err := deletedID(payload)
		if err != nil {
			return current, err
		}

		out := make([]T, 0, len(current))
		for _, existing := range current {
			if key(existing) != id {
				out = append(out, existing)
			}
		}
		return out, nil
	}
}

// Replace returns a merge that swaps the whole value, used by record views.
func Replace[T any]() Merge[T] {
	return func(current T, payload json.RawMessage) (T, error) {
		var next T
		if err := json.Unmarshal(payload, &next); err != nil {
			return current, fmt.Errorf("replace: %w", err)
		}
		return next, nil
	}
}

func deletedID(payload json.RawMessage) (string, error) {
	var bare string
	if err := json.Unmarshal(payload, &bare); err == nil && bare != "" {
		return bare, nil
	}
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &ref); err != nil {
		return "", fmt.Errorf("remove: %w", err)
	}
	if ref.ID == "" {
		return "", fmt.Errorf("remove: payload without id")
	}
	return ref.ID, nil
}
