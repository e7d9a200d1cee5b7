package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"messenger/internal/access"
	"messenger/internal/domain"
)

func TestCapabilities(t *testing.T) {
	cases := []struct {
		name string
		rel  access.Relation
		want access.Capability
	}{
		{"private participant", access.Relation{Kind: domain.ChatPrivate, Participant: true}, access.Read | access.Send | access.Delete},
		{"private stranger", access.Relation{Kind: domain.ChatPrivate}, access.None},
		{"group admin", access.Relation{Kind: domain.ChatGroup, Role: domain.RoleAdmin}, access.Read | access.Send | access.Manage | access.Delete | access.Moderate},
		{"group member", access.Relation{Kind: domain.ChatGroup, Role: domain.RoleMember}, access.Read | access.Send},
		{"group restricted", access.Relation{Kind: domain.ChatGroup, Role: domain.RoleRestricted}, access.Read},
		{"group outsider", access.Relation{Kind: domain.ChatGroup}, access.None},
		{"channel owner", access.Relation{Kind: domain.ChatChannel, Owner: true}, access.Read | access.Send | access.Manage | access.Delete | access.Moderate},
		{"channel owner subscribed", access.Relation{Kind: domain.ChatChannel, Owner: true, Subscribed: true}, access.Read | access.Send | access.Manage | access.Delete | access.Moderate},
		{"channel subscriber", access.Relation{Kind: domain.ChatChannel, Subscribed: true}, access.Read},
		{"channel outsider", access.Relation{Kind: domain.ChatChannel}, access.None},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.Capabilities(tc.rel))
		})
	}
}

func TestRestrictedCannotSend(t *testing.T) {
	rel := access.Relation{Kind: domain.ChatGroup, Role: domain.RoleRestricted}
	assert.True(t, access.Capabilities(rel).Has(access.Read))
	assert.False(t, access.Capabilities(rel).Has(access.Send))
}

func TestCanDeleteMessage(t *testing.T) {
	member := access.Relation{Kind: domain.ChatGroup, Role: domain.RoleMember}
	admin := access.Relation{Kind: domain.ChatGroup, Role: domain.RoleAdmin}
	subscriber := access.Relation{Kind: domain.ChatChannel, Subscribed: true}
	outsider := access.Relation{Kind: domain.ChatPrivate}

	assert.True(t, access.CanDeleteMessage(member, 1, 1), "sender deletes own message")
	assert.False(t, access.CanDeleteMessage(member, 1, 2))
	assert.True(t, access.CanDeleteMessage(admin, 1, 2))
	assert.False(t, access.CanDeleteMessage(subscriber, 1, 2))
	assert.True(t, access.CanDeleteMessage(outsider, 3, 3), "former participant keeps own messages")
}
