// api/model/client_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		origin  string
		want    bool
	}{
		{"wildcard trusts everything", "*", "https://anything.example.com", true},
		{"exact host", "maps.example.com", "https://maps.example.com", true},
		{"exact host with port", "maps.example.com", "https://maps.example.com:8443", true},
		{"exact host mismatch", "maps.example.com", "https://other.example.com", false},
		{"subdomain wildcard matches root", "*.example.com", "https://example.com", true},
		{"subdomain wildcard matches subdomain", "*.example.com", "https://maps.example.com", true},
		{"subdomain wildcard matches deep subdomain", "*.example.com", "https://a.b.example.com", true},
		{"subdomain wildcard rejects suffix trick", "*.example.com", "https://evilexample.com", false},
		{"pattern with scheme", "https://maps.example.com", "https://maps.example.com", true},
		{"origin with path", "maps.example.com", "https://maps.example.com/embed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Origin{Pattern: tt.pattern}
			assert.Equal(t, tt.want, o.Matches(tt.origin))
		})
	}
}
