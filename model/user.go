// api/model/user.go
package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Groups lists the dataset groups this user belongs to, across all
	// datasets. Membership drives group permission rules and the cache
	// partitioning token.
	Groups []GroupMembership `json:"groups,omitempty"`
}

// GroupMembership records that a user belongs to a named group on one
// dataset.
type GroupMembership struct {
	DataSetID string `json:"dataset_id"`
	Name      string `json:"name"`
}

// GroupsOn returns the names of the groups the user belongs to on the
// given dataset.
func (u *User) GroupsOn(datasetID string) []string {
	var names []string
	for _, g := range u.Groups {
		if g.DataSetID == datasetID {
			names = append(names, g.Name)
		}
	}
	return names
}
