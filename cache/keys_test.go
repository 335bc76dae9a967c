// api/cache/keys_test.go
package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCacheBuster(t *testing.T) {
	assert.Equal(t, "", StripCacheBuster("_=1716563200000"))
	assert.Equal(t, "limit=10", StripCacheBuster("limit=10&_=1716563200000"))
	assert.Equal(t, "limit=10&offset=5", StripCacheBuster("limit=10&_=1716563200000&offset=5"))
	assert.Equal(t, "limit=10&offset=5", StripCacheBuster("limit=10&offset=5"))
	assert.Equal(t, "", StripCacheBuster(""))
}

func TestResponseKeyIgnoresCacheBuster(t *testing.T) {
	withBuster := ResponseKey("/api/v2/demo/datasets/park/places", "application/json", "limit=10&_=1716563200000", "")
	withoutBuster := ResponseKey("/api/v2/demo/datasets/park/places", "application/json", "limit=10", "")
	assert.Equal(t, withoutBuster, withBuster)
}

func TestResponseKeyPartitionsByGroupToken(t *testing.T) {
	path := "/api/v2/demo/datasets/park/places"
	anonymous := ResponseKey(path, "application/json", "", "")
	owner := ResponseKey(path, "application/json", "", "__owners__")
	editors := ResponseKey(path, "application/json", "", "editors")

	assert.NotEqual(t, anonymous, owner)
	assert.NotEqual(t, anonymous, editors)
	assert.NotEqual(t, owner, editors)
}

func TestResponseKeyVariesByAcceptAndQuery(t *testing.T) {
	path := "/api/v2/demo/datasets/park/places"
	assert.NotEqual(t,
		ResponseKey(path, "application/json", "", ""),
		ResponseKey(path, "text/html", "", ""))
	assert.NotEqual(t,
		ResponseKey(path, "application/json", "limit=10", ""),
		ResponseKey(path, "application/json", "limit=20", ""))
}

func TestMetakey(t *testing.T) {
	assert.Equal(t, "/api/v2/demo/datasets/park/places_keys", Metakey("/api/v2/demo/datasets/park/places"))
}
