// api/auth/policy_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	m.Run()
}

func testDataSet() *model.DataSet {
	return &model.DataSet{
		ID:            "d1",
		Slug:          "park",
		OwnerID:       "u1",
		OwnerUsername: "demo",
	}
}

func owner() *Subject {
	return &Subject{User: &model.User{ID: "u1", Username: "demo"}}
}

func stranger() *Subject {
	return &Subject{User: &model.User{ID: "u2", Username: "visitor"}}
}

func member(groups ...string) *Subject {
	user := &model.User{ID: "u3", Username: "member"}
	for _, name := range groups {
		user.Groups = append(user.Groups, model.GroupMembership{DataSetID: "d1", Name: name})
	}
	return &Subject{User: user}
}

func TestGroupTokenFor(t *testing.T) {
	ds := testDataSet()

	assert.Equal(t, OwnerGroupToken, GroupTokenFor(owner(), ds))
	assert.Equal(t, "", GroupTokenFor(stranger(), ds))
	assert.Equal(t, "", GroupTokenFor(nil, ds))
	assert.Equal(t, "editors,reviewers", GroupTokenFor(member("reviewers", "editors"), ds))

	// Admins are served owner views, so they must share the owner cache
	// partition rather than the anonymous one.
	admin := &Subject{User: &model.User{ID: "u9", Username: "root", IsAdmin: true}}
	assert.Equal(t, OwnerGroupToken, GroupTokenFor(admin, ds))
}

func TestAuthorizeOwnerMayDoAnything(t *testing.T) {
	ds := testDataSet()
	p := &Principal{Subject: owner()}

	decision := Authorize(p, ds, "",
		model.AbilityRead, model.AbilityWrite, model.AbilityReadPrivate, model.AbilityReadInvisible)
	assert.True(t, decision.Allowed)
	assert.Equal(t, OwnerGroupToken, decision.GroupToken)
}

func TestAuthorizePlainReadIsOpen(t *testing.T) {
	ds := testDataSet()

	decision := Authorize(&Principal{}, ds, "", model.AbilityRead)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "", decision.GroupToken)
}

func TestAuthorizeWriteDeniedByDefault(t *testing.T) {
	ds := testDataSet()

	decision := Authorize(&Principal{Subject: stranger()}, ds, "", model.AbilityWrite)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
}

func TestAuthorizeSensitiveAbilitiesAreOwnerOnly(t *testing.T) {
	ds := testDataSet()

	decision := Authorize(&Principal{Subject: stranger()}, ds, "", model.AbilityRead, model.AbilityReadPrivate)
	assert.False(t, decision.Allowed)

	// A client credential never opens sensitive reads either.
	client := &Client{
		Kind:      ClientKey,
		DataSetID: "d1",
		Permissions: []model.PermissionRule{
			{Scope: model.ScopeKey, Allow: true, Abilities: []model.Ability{model.AbilityRead, model.AbilityWrite, model.AbilityReadInvisible}},
		},
	}
	decision = Authorize(&Principal{Client: client}, ds, "", model.AbilityReadInvisible)
	assert.False(t, decision.Allowed)

	// A dataset-level rule can open one up explicitly.
	ds.Permissions = []model.PermissionRule{
		{Scope: model.ScopeDataSet, Allow: true, Abilities: []model.Ability{model.AbilityReadInvisible}},
	}
	decision = Authorize(&Principal{Subject: stranger()}, ds, "", model.AbilityReadInvisible)
	assert.True(t, decision.Allowed)
}

func TestAuthorizeClientRuleGrantsWrite(t *testing.T) {
	ds := testDataSet()
	client := &Client{
		Kind:      ClientKey,
		DataSetID: "d1",
		Permissions: []model.PermissionRule{
			{Scope: model.ScopeKey, Allow: true, Abilities: []model.Ability{model.AbilityWrite}},
		},
	}

	decision := Authorize(&Principal{Client: client}, ds, "", model.AbilityWrite)
	assert.True(t, decision.Allowed)

	// The same credential on a different dataset grants nothing.
	client.DataSetID = "d2"
	decision = Authorize(&Principal{Client: client}, ds, "", model.AbilityWrite)
	assert.False(t, decision.Allowed)
}

func TestAuthorizeClientRuleScopedToSubmissionSet(t *testing.T) {
	ds := testDataSet()
	client := &Client{
		Kind:      ClientOrigin,
		DataSetID: "d1",
		Permissions: []model.PermissionRule{
			{Scope: model.ScopeOrigin, Allow: true, SubmissionSet: "comments", Abilities: []model.Ability{model.AbilityWrite}},
		},
	}

	decision := Authorize(&Principal{Client: client}, ds, "comments", model.AbilityWrite)
	assert.True(t, decision.Allowed)

	decision = Authorize(&Principal{Client: client}, ds, "surveys", model.AbilityWrite)
	assert.False(t, decision.Allowed)
}

func TestAuthorizeGroupRuleGrantsWrite(t *testing.T) {
	ds := testDataSet()
	ds.Groups = []model.Group{{
		ID:        "g1",
		Name:      "editors",
		DataSetID: "d1",
		Permissions: []model.PermissionRule{
			{Scope: model.ScopeGroup, Allow: true, Abilities: []model.Ability{model.AbilityWrite}},
		},
	}}

	decision := Authorize(&Principal{Subject: member("editors")}, ds, "", model.AbilityWrite)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "editors", decision.GroupToken)

	decision = Authorize(&Principal{Subject: member("spectators")}, ds, "", model.AbilityWrite)
	assert.False(t, decision.Allowed)
}
