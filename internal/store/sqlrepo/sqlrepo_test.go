package sqlrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/domain"
	"messenger/internal/store/sqlite/sqlitetest"
	"messenger/internal/store/sqlrepo"
)

func strptr(s string) *string { return &s }

func mustUser(t *testing.T, s *sqlrepo.Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, PasswordHash: "x", DisplayName: name}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUserCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)

	u := mustUser(t, s, "alice")
	assert.NotZero(t, u.ID)

	got, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsDeleted)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := s.Users().GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.Users().Create(ctx, &domain.User{Username: "alice", PasswordHash: "x", DisplayName: "a"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserProfileAndEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "alice")
	b := mustUser(t, s, "bob")

	require.NoError(t, s.Users().UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Email: strptr("a@example.com")}))
	err := s.Users().UpdateProfile(ctx, b.ID, domain.ProfileUpdate{Email: strptr("a@example.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, s.Users().UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Email: strptr("")}))
	got, err := s.Users().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Email)
}

func TestUserSoftDeleteAndSearch(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "alice")
	mustUser(t, s, "alicia")
	mustUser(t, s, "bob")

	found, err := s.Users().Search(ctx, "ALI", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	require.NoError(t, s.Users().SoftDelete(ctx, a.ID, domain.Tombstone{Username: "deleted_user_1_x", DisplayName: "Deleted user", PasswordHash: "y"}))
	err = s.Users().SoftDelete(ctx, a.ID, domain.Tombstone{Username: "deleted_user_1_z", DisplayName: "Deleted user", PasswordHash: "y"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err = s.Users().Search(ctx, "ali", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alicia", found[0].Username)

	found, err = s.Users().Search(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, found, "wildcards are matched literally")

	gone, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPrivateLinkUniqueness(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")

	chat := &domain.Chat{Type: domain.ChatPrivate}
	require.NoError(t, s.Chats().Create(ctx, chat))
	require.NoError(t, s.Chats().CreatePrivateLink(ctx, domain.NewPrivateChatLink(chat.ID, b.ID, a.ID)))

	other := &domain.Chat{Type: domain.ChatPrivate}
	require.NoError(t, s.Chats().Create(ctx, other))
	err := s.Chats().CreatePrivateLink(ctx, domain.NewPrivateChatLink(other.ID, a.ID, b.ID))
	assert.ErrorIs(t, err, domain.ErrConflict)

	link, err := s.Chats().FindPrivateLink(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, chat.ID, link.ChatID)

	entries, err := s.Chats().ListPrivateForUser(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID, entries[0].Link.Other(b.ID))
}

func TestMembershipAndAdminCount(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")

	g := &domain.Chat{Type: domain.ChatGroup, Name: strptr("g")}
	require.NoError(t, s.Chats().Create(ctx, g))
	require.NoError(t, s.Members().AddGroupMember(ctx, domain.GroupMembership{GroupID: g.ID, UserID: a.ID, Role: domain.RoleAdmin}))
	require.NoError(t, s.Members().AddGroupMember(ctx, domain.GroupMembership{GroupID: g.ID, UserID: b.ID, Role: domain.RoleMember}))
	assert.ErrorIs(t, s.Members().AddGroupMember(ctx, domain.GroupMembership{GroupID: g.ID, UserID: b.ID, Role: domain.RoleMember}), domain.ErrConflict)

	n, err := s.Members().CountGroupAdmins(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.Members().UpdateGroupMemberRole(ctx, g.ID, b.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
	n, err = s.Members().CountGroupAdmins(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	members, err := s.Members().ListGroupMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	groups, err := s.Chats().ListGroupsForUser(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, domain.RoleAdmin, groups[0].Role)

	ok, err = s.Members().RemoveGroupMember(ctx, g.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Members().RemoveGroupMember(ctx, g.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChannelsListedForOwnerAndSubscriber(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	owner := mustUser(t, s, "owner")
	sub := mustUser(t, s, "sub")
	stranger := mustUser(t, s, "stranger")

	ch := &domain.Chat{Type: domain.ChatChannel, Name: strptr("news"), OwnerID: &owner.ID}
	require.NoError(t, s.Chats().Create(ctx, ch))
	require.NoError(t, s.Members().AddSubscriber(ctx, domain.ChannelSubscription{ChannelID: ch.ID, UserID: sub.ID}))

	for _, id := range []int64{owner.ID, sub.ID} {
		list, err := s.Chats().ListChannelsForUser(ctx, id)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
	list, err := s.Chats().ListChannelsForUser(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	subscribed, err := s.Members().IsSubscribed(ctx, ch.ID, sub.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)
}

func TestMessagesOrderingAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "a")
	g := &domain.Chat{Type: domain.ChatGroup, Name: strptr("g")}
	require.NoError(t, s.Chats().Create(ctx, g))

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first := &domain.Message{ChatID: g.ID, SenderID: a.ID, Type: domain.MessageText, Content: strptr("1"), SentAt: at}
	second := &domain.Message{ChatID: g.ID, SenderID: a.ID, Type: domain.MessageText, Content: strptr("2"), SentAt: at}
	earlier := &domain.Message{ChatID: g.ID, SenderID: a.ID, Type: domain.MessageText, Content: strptr("0"), SentAt: at.Add(-time.Minute)}
	for _, m := range []*domain.Message{first, second, earlier} {
		require.NoError(t, s.Messages().Create(ctx, m))
	}

	list, err := s.Messages().ListForChat(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{earlier.ID, first.ID, second.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	require.NotNil(t, list[0].Sender)
	assert.Equal(t, "a", list[0].Sender.Username)

	require.NoError(t, s.Messages().SoftDelete(ctx, first.ID, a.ID))
	got, err := s.Messages().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Nil(t, got.Content)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, a.ID, *got.DeletedBy)
}

func TestChatDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "a")
	g := &domain.Chat{Type: domain.ChatGroup, Name: strptr("g")}
	require.NoError(t, s.Chats().Create(ctx, g))
	require.NoError(t, s.Members().AddGroupMember(ctx, domain.GroupMembership{GroupID: g.ID, UserID: a.ID, Role: domain.RoleAdmin}))
	m := &domain.Message{ChatID: g.ID, SenderID: a.ID, Type: domain.MessageText, Content: strptr("x")}
	require.NoError(t, s.Messages().Create(ctx, m))

	require.NoError(t, s.Chats().Delete(ctx, g.ID))

	chat, err := s.Chats().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, chat)
	msg, err := s.Messages().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, msg)
	member, err := s.Members().GetGroupMember(ctx, g.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, member)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx domain.Store) error {
		u := &domain.User{Username: "ghost", PasswordHash: "x", DisplayName: "ghost"}
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Users().GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserSearchFoldsUnicodeCase(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	mustUser(t, s, "Алиса")
	boris := &domain.User{Username: "boris", PasswordHash: "x", DisplayName: "Борис"}
	require.NoError(t, s.Users().Create(ctx, boris))

	for _, q := range []string{"Алиса", "алиса", "АЛИ", "ли"} {
		found, err := s.Users().Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, found, 1, q)
		assert.Equal(t, "Алиса", found[0].Username)
	}

	for _, q := range []string{"Борис", "борис", "ОРИ"} {
		found, err := s.Users().Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, found, 1, q)
		assert.Equal(t, boris.ID, found[0].ID)
	}
}

func TestRoleChangeRestampsJoinedAt(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	a := mustUser(t, s, "a")

	g := &domain.Chat{Type: domain.ChatGroup, Name: strptr("g")}
	require.NoError(t, s.Chats().Create(ctx, g))
	joined := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.Members().AddGroupMember(ctx, domain.GroupMembership{GroupID: g.ID, UserID: a.ID, Role: domain.RoleMember, JoinedAt: joined}))

	ok, err := s.Members().UpdateGroupMemberRole(ctx, g.ID, a.ID, domain.RoleRestricted)
	require.NoError(t, err)
	require.True(t, ok)

	m, err := s.Members().GetGroupMember(ctx, g.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRestricted, m.Role)
	assert.True(t, m.JoinedAt.After(joined.Add(30*time.Minute)), "joined_at %v should follow the role change", m.JoinedAt)
}

func TestLockForUpdate(t *testing.T) {
	ctx := context.Background()
	s := sqlitetest.New(t)
	g := &domain.Chat{Type: domain.ChatGroup, Name: strptr("g")}
	require.NoError(t, s.Chats().Create(ctx, g))

	err := s.WithinTx(ctx, func(tx domain.Store) error {
		locked, err := tx.Chats().LockForUpdate(ctx, g.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, "g", *locked.Name)

		missing, err := tx.Chats().LockForUpdate(ctx, g.ID+100)
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}
