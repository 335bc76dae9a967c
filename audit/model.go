// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	Username      string          `json:"username"`
	Action        string          `json:"action"`
	ThingKind     string          `json:"thing_kind"`
	ThingID       string          `json:"thing_id"`
	OwnerUsername string          `json:"owner_username"`
	DataSetSlug   string          `json:"dataset_slug"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
