// api/model/datablob_test.go
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripPrivateAttributes(t *testing.T) {
	data := json.RawMessage(`{"name":"Oak Tree","private-email":"a@b.c","private-phone":"555"}`)

	stripped := StripPrivateAttributes(data)

	var fields map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(stripped, &fields))
	assert.Contains(t, fields, "name")
	assert.NotContains(t, fields, "private-email")
	assert.NotContains(t, fields, "private-phone")
}

func TestStripPrivateAttributesPassthrough(t *testing.T) {
	// Nothing private, empty, and non-object blobs come back unchanged.
	clean := json.RawMessage(`{"name":"Oak Tree"}`)
	assert.Equal(t, clean, StripPrivateAttributes(clean))

	assert.Empty(t, StripPrivateAttributes(nil))

	list := json.RawMessage(`[1,2,3]`)
	assert.Equal(t, list, StripPrivateAttributes(list))
}
