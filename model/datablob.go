// api/model/datablob.go
package model

import "encoding/json"

// PrivateAttrPrefix marks free-form data attributes that are only
// serialized for callers authorized to read private data.
const PrivateAttrPrefix = "private-"

// StripPrivateAttributes returns a copy of a free-form data blob with
// every private attribute removed. Blobs that do not decode to an
// object are returned unchanged.
func StripPrivateAttributes(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return data
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return data
	}

	stripped := false
	for name := range fields {
		if len(name) >= len(PrivateAttrPrefix) && name[:len(PrivateAttrPrefix)] == PrivateAttrPrefix {
			delete(fields, name)
			stripped = true
		}
	}
	if !stripped {
		return data
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return data
	}
	return out
}
