// api/model/client.go
package model

import (
	"strings"
	"time"
)

// ApiKey is a client credential scoped to one dataset. Applications
// present it in a request header to act on the dataset's behalf.
type ApiKey struct {
	ID          string           `json:"id"`
	Key         string           `json:"key"`
	DataSetID   string           `json:"dataset_id"`
	Permissions []PermissionRule `json:"permissions,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Origin is a trusted web origin scoped to one dataset. Requests whose
// Origin header matches the pattern act as this client.
type Origin struct {
	ID          string           `json:"id"`
	Pattern     string           `json:"pattern"`
	DataSetID   string           `json:"dataset_id"`
	Permissions []PermissionRule `json:"permissions,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Matches reports whether a request Origin header value is covered by
// this trusted origin. The pattern "*" trusts everything; a leading
// "*." trusts a host and its subdomains; anything else must equal the
// request origin's host exactly.
func (o *Origin) Matches(requestOrigin string) bool {
	if o.Pattern == "*" {
		return true
	}

	host := requestOrigin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	pattern := o.Pattern
	if i := strings.Index(pattern, "://"); i >= 0 {
		pattern = pattern[i+3:]
	}

	if rest, ok := strings.CutPrefix(pattern, "*."); ok {
		return host == rest || strings.HasSuffix(host, "."+rest)
	}
	return host == pattern
}

// Group is a named set of submitters on one dataset, carrying its own
// permission rules.
type Group struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	DataSetID    string           `json:"dataset_id"`
	SubmitterIDs []string         `json:"submitter_ids,omitempty"`
	Permissions  []PermissionRule `json:"permissions,omitempty"`
}
