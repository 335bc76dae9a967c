// api/model/geojson_test.go
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFeatureCollection(t *testing.T) {
	places := []*Place{
		{ID: "p1", Geometry: json.RawMessage(`{"type":"Point","coordinates":[1,2]}`), Data: json.RawMessage(`{"name":"Oak"}`)},
		{ID: "p2", Geometry: json.RawMessage(`{"type":"Point","coordinates":[3,4]}`), Data: json.RawMessage(`{"name":"Elm"}`)},
	}

	fc := NewFeatureCollection(places)

	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 2)
	assert.Equal(t, "Feature", fc.Features[0].Type)
	assert.Equal(t, "p1", fc.Features[0].ID)
	assert.JSONEq(t, `{"type":"Point","coordinates":[1,2]}`, string(fc.Features[0].Geometry))
	assert.JSONEq(t, `{"name":"Elm"}`, string(fc.Features[1].Properties))
}

func TestNewFeatureCollectionEmpty(t *testing.T) {
	fc := NewFeatureCollection(nil)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Empty(t, fc.Features)
}
