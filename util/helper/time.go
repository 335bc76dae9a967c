package helper_util

import "time"

// ParseTime parses the RFC 3339 timestamps the graph stores.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
