// api/model/permission.go
package model

// Ability is a single operation class a permission rule can grant.
type Ability string

const (
	AbilityRead          Ability = "read"
	AbilityWrite         Ability = "write"
	AbilityReadPrivate   Ability = "read-private"
	AbilityReadInvisible Ability = "read-invisible"
)

// RuleScope says which kind of principal a permission rule binds to.
type RuleScope string

const (
	ScopeDataSet RuleScope = "dataset"
	ScopeKey     RuleScope = "key"
	ScopeOrigin  RuleScope = "origin"
	ScopeGroup   RuleScope = "group"
)

// PermissionRule grants or withholds a set of abilities for principals
// matched by its scope. Rules are attached to a dataset and to the
// dataset's keys, origins, and groups.
type PermissionRule struct {
	Scope     RuleScope `json:"scope"`
	Abilities []Ability `json:"abilities"`
	Allow     bool      `json:"allow"`

	// SubmissionSet restricts the rule to one submission set when
	// non-empty; "*" or "" applies to everything in the dataset.
	SubmissionSet string `json:"submission_set,omitempty"`
}

// Grants reports whether the rule covers the given ability and
// submission set.
func (r PermissionRule) Grants(ability Ability, submissionSet string) bool {
	if !r.Allow {
		return false
	}
	if r.SubmissionSet != "" && r.SubmissionSet != "*" && submissionSet != "" && r.SubmissionSet != submissionSet {
		return false
	}
	for _, a := range r.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}
