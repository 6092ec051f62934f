package fetch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert_IsIdempotent(t *testing.T) {
	merge := Upsert(itemKey)
	current := []item{{ID: "1", Name: "a"}}

	once, err := merge(current, json.RawMessage(`{"id":"2","name":"b"}`))
	require.NoError(t, err)
	twice, err := merge(once, json.RawMessage(`{"id":"2","name":"b"}`))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Len(t, twice, 2)
	assert.Len(t, current, 1, "input slice must not be modified")
}

func TestUpsert_RejectsItemWithoutKey(t *testing.T) {
	current := []item{{ID: "1"}}
	out, err := Upsert(itemKey)(current, json.RawMessage(`{"name":"anonymous"}`))
	require.Error(t, err)
	assert.Equal(t, current, out)
}

func TestRemove_AcceptsBareAndObjectIDs(t *testing.T) {
	current := []item{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	merge := Remove(itemKey)

	out, err := merge(current, json.RawMessage(`"2"`))
	require.NoError(t, err)
	out, err = merge(out, json.RawMessage(`{"id":"3"}`))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1"}}, out)

	again, err := merge(out, json.RawMessage(`{"id":"3"}`))
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = merge(out, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestReplace(t *testing.T) {
	type stats struct {
		Companies int `json:"companies"`
	}
	next, err := Replace[stats]()(stats{Companies: 1}, json.RawMessage(`{"companies":4}`))
	require.NoError(t, err)
	assert.Equal(t, 4, next.Companies)
}
