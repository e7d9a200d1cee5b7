package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/blob"
	"messenger/internal/domain"
	"messenger/internal/security"
	"messenger/internal/service"
	"messenger/internal/store/sqlite/sqlitetest"
)

type fixture struct {
	ctx      context.Context
	store    domain.Store
	auth     *service.AuthService
	users    *service.UserService
	chats    *service.ChatService
	members  *service.MembershipService
	messages *service.MessageService
	blobDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := sqlitetest.New(t)
	hasher := security.NewPasswordHasher(4)
	enc, err := security.NewEncryptor([]byte("test-key"))
	require.NoError(t, err)
	dir := t.TempDir()
	blobs, err := blob.NewDiskStore(dir, "/uploads", 1024, []string{"txt", "png"})
	require.NoError(t, err)

	return &fixture{
		ctx:      context.Background(),
		store:    store,
		auth:     service.NewAuthService(store.Users(), security.NewTokenService("secret", time.Hour), hasher, security.NewMemoryRevocations()),
		users:    service.NewUserService(store, hasher),
		chats:    service.NewChatService(store),
		members:  service.NewMembershipService(store),
		messages: service.NewMessageService(store, enc, blobs),
		blobDir:  dir,
	}
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(f.ctx, service.RegisterInput{Username: name, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func TestSoftDeletedUserCannotLoginOrBeFound(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	require.NoError(t, f.users.SoftDelete(f.ctx, alice.ID))

	_, err := f.auth.Authenticate(f.ctx, "alice", "secret1")
	assert.Error(t, err)
	found, err := f.users.Search(f.ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, found)

	row, err := f.users.GetByID(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, row.IsDeleted)
	assert.True(t, strings.HasPrefix(row.Username, "deleted_user_"))
	assert.Equal(t, service.DeletedUserLabel, row.DisplayName)
	assert.Nil(t, row.Email)

	err = f.users.SoftDelete(f.ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the old username is free again
	f.register(t, "alice")
}

func TestSearchBlankQueryReturnsNothing(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	found, err := f.users.Search(f.ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	email := "shared@example.com"

	_, err := f.users.UpdateProfile(f.ctx, alice.ID, domain.ProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	name := "Alice A."
	u, err := f.users.UpdateProfile(f.ctx, alice.ID, domain.ProfileUpdate{DisplayName: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", u.DisplayName)

	_, err = f.users.UpdateProfile(f.ctx, bob.ID, domain.ProfileUpdate{Email: &email})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// setting your own email again is not a collision
	_, err = f.users.UpdateProfile(f.ctx, alice.ID, domain.ProfileUpdate{Email: &email})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	assert.ErrorIs(t, f.users.ChangePassword(f.ctx, alice.ID, "wrong1", "newpass"), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.users.ChangePassword(f.ctx, alice.ID, "secret1", "short"), domain.ErrInvalidInput)
	require.NoError(t, f.users.ChangePassword(f.ctx, alice.ID, "secret1", "newpass"))

	_, err := f.auth.Authenticate(f.ctx, "alice", "newpass")
	assert.NoError(t, err)
}

func TestPrivateChatPairIsOrderIndependent(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	chat, err := f.chats.CreatePrivate(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.chats.CreatePrivate(f.ctx, bob.ID, alice.ID)
	var exists *domain.ChatExistsError
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, chat.ID, exists.ChatID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.chats.CreatePrivate(f.ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.chats.CreatePrivate(f.ctx, alice.ID, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrivateChatScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	chat, err := f.chats.CreatePrivateWithUsername(f.ctx, alice.ID, "bob")
	require.NoError(t, err)

	_, err = f.messages.Send(f.ctx, chat.ID, alice.ID, "hi")
	require.NoError(t, err)

	list, err := f.messages.List(f.ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].SenderDisplayName)
	require.NotNil(t, list[0].Content)
	assert.Equal(t, "hi", *list[0].Content)

	detail, err := f.chats.Get(f.ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Name)
	assert.Equal(t, "alice", *detail.Name)
	assert.Len(t, detail.Members, 2)

	carol := f.register(t, "carol")
	_, err = f.chats.Get(f.ctx, chat.ID, carol.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.messages.Send(f.ctx, chat.ID, carol.ID, "let me in")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.chats.Update(f.ctx, chat.ID, alice.ID, domain.ChatUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// the counterpart leaves: the chat is shown with the placeholder
	require.NoError(t, f.users.SoftDelete(f.ctx, alice.ID))
	chats, err := f.chats.ListForUser(f.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, service.DeletedUserLabel, *chats[0].Name)
	assert.Nil(t, chats[0].AvatarURL)

	list, err = f.messages.List(f.ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DeletedUserLabel, list[0].SenderDisplayName)
}

func TestGroupRolesScenario(t *testing.T) {
	f := newFixture(t)
	admin := f.register(t, "admin")
	bob := f.register(t, "bob")

	group, err := f.chats.CreateGroup(f.ctx, admin.ID, service.ChatCreateInput{
		Name:            "Team",
		MemberIDs:       []int64{bob.ID, bob.ID, admin.ID, 999},
		MemberUsernames: []string{"nobody"},
	})
	require.NoError(t, err)

	detail, err := f.chats.Get(f.ctx, group.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Members, 2, "duplicates, self and unknown ids are skipped")

	_, err = f.messages.Send(f.ctx, group.ID, bob.ID, "hello team")
	require.NoError(t, err)

	require.NoError(t, f.members.ChangeGroupMemberRole(f.ctx, group.ID, admin.ID, bob.ID, domain.RoleRestricted))
	_, err = f.messages.Send(f.ctx, group.ID, bob.ID, "still here?")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// restricted members keep read access
	_, err = f.messages.List(f.ctx, group.ID, bob.ID)
	assert.NoError(t, err)

	err = f.members.ChangeGroupMemberRole(f.ctx, group.ID, bob.ID, admin.ID, domain.RoleMember)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSoleAdminGuard(t *testing.T) {
	f := newFixture(t)
	admin := f.register(t, "admin")
	bob := f.register(t, "bob")

	group, err := f.chats.CreateGroup(f.ctx, admin.ID, service.ChatCreateInput{Name: "G", MemberUsernames: []string{"bob"}})
	require.NoError(t, err)

	assert.ErrorIs(t, f.members.RemoveGroupMember(f.ctx, group.ID, admin.ID, admin.ID), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.members.ChangeGroupMemberRole(f.ctx, group.ID, admin.ID, admin.ID, domain.RoleMember), domain.ErrInvalidInput)
	assert.NoError(t, f.members.ChangeGroupMemberRole(f.ctx, group.ID, admin.ID, admin.ID, domain.RoleAdmin), "re-affirming admin is allowed")

	require.NoError(t, f.members.ChangeGroupMemberRole(f.ctx, group.ID, admin.ID, bob.ID, domain.RoleAdmin))
	require.NoError(t, f.members.ChangeGroupMemberRole(f.ctx, group.ID, admin.ID, admin.ID, domain.RoleMember))

	assert.ErrorIs(t, f.members.RemoveGroupMember(f.ctx, group.ID, bob.ID, 999), domain.ErrNotFound)
	require.NoError(t, f.members.RemoveGroupMember(f.ctx, group.ID, bob.ID, admin.ID))
}

func TestAddGroupMember(t *testing.T) {
	f := newFixture(t)
	admin := f.register(t, "admin")
	bob := f.register(t, "bob")
	f.register(t, "carol")

	group, err := f.chats.CreateGroup(f.ctx, admin.ID, service.ChatCreateInput{Name: "G"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.members.AddGroupMember(f.ctx, group.ID, admin.ID, "bob", "owner"), domain.ErrInvalidInput)
	require.NoError(t, f.members.AddGroupMember(f.ctx, group.ID, admin.ID, "bob", ""))
	assert.ErrorIs(t, f.members.AddGroupMember(f.ctx, group.ID, admin.ID, "bob", domain.RoleAdmin), domain.ErrConflict)
	assert.ErrorIs(t, f.members.AddGroupMember(f.ctx, group.ID, admin.ID, "nobody", ""), domain.ErrNotFound)
	assert.ErrorIs(t, f.members.AddGroupMember(f.ctx, group.ID, bob.ID, "carol", ""), domain.ErrForbidden)

	channel, err := f.chats.CreateChannel(f.ctx, admin.ID, service.ChatCreateInput{Name: "C"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.members.AddGroupMember(f.ctx, channel.ID, admin.ID, "carol", ""), domain.ErrNotFound)
}

func TestChannelScenario(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner")
	carol := f.register(t, "carol")
	dave := f.register(t, "dave")

	channel, err := f.chats.CreateChannel(f.ctx, owner.ID, service.ChatCreateInput{Name: "News"})
	require.NoError(t, err)

	require.NoError(t, f.members.Subscribe(f.ctx, channel.ID, carol.ID))
	assert.ErrorIs(t, f.members.Subscribe(f.ctx, channel.ID, carol.ID), domain.ErrConflict)

	_, err = f.messages.Send(f.ctx, channel.ID, carol.ID, "me too")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.messages.Send(f.ctx, channel.ID, owner.ID, "breaking")
	require.NoError(t, err)

	list, err := f.messages.List(f.ctx, channel.ID, carol.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "breaking", *list[0].Content)

	assert.ErrorIs(t, f.members.AddSubscriber(f.ctx, channel.ID, carol.ID, "dave"), domain.ErrForbidden)
	require.NoError(t, f.members.AddSubscriber(f.ctx, channel.ID, owner.ID, "dave"))
	assert.ErrorIs(t, f.members.AddSubscriber(f.ctx, channel.ID, owner.ID, "dave"), domain.ErrConflict)

	assert.ErrorIs(t, f.members.Unsubscribe(f.ctx, channel.ID, owner.ID), domain.ErrForbidden)
	require.NoError(t, f.members.Unsubscribe(f.ctx, channel.ID, dave.ID))
	assert.ErrorIs(t, f.members.Unsubscribe(f.ctx, channel.ID, dave.ID), domain.ErrNotFound)

	detail, err := f.chats.Get(f.ctx, channel.ID, carol.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, owner.ID, detail.Owner.ID)

	_, err = f.chats.Update(f.ctx, channel.ID, carol.ID, domain.ChatUpdate{Name: strptr("Mine")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	updated, err := f.chats.Update(f.ctx, channel.ID, owner.ID, domain.ChatUpdate{Name: strptr("World News")})
	require.NoError(t, err)
	assert.Equal(t, "World News", *updated.Name)

	assert.ErrorIs(t, f.chats.Delete(f.ctx, channel.ID, carol.ID), domain.ErrForbidden)
	require.NoError(t, f.chats.Delete(f.ctx, channel.ID, owner.ID))
	_, err = f.chats.Get(f.ctx, channel.ID, owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageDeleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	admin := f.register(t, "admin")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	group, err := f.chats.CreateGroup(f.ctx, admin.ID, service.ChatCreateInput{Name: "G", MemberIDs: []int64{bob.ID, carol.ID}})
	require.NoError(t, err)

	msg, err := f.messages.Send(f.ctx, group.ID, bob.ID, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", *msg.Content)

	list, err := f.messages.List(f.ctx, group.ID, carol.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", *list[0].Content)
	assert.False(t, list[0].IsDeleted)

	assert.ErrorIs(t, f.messages.Delete(f.ctx, msg.ID, carol.ID), domain.ErrForbidden)
	require.NoError(t, f.messages.Delete(f.ctx, msg.ID, admin.ID))
	require.NoError(t, f.messages.Delete(f.ctx, msg.ID, admin.ID), "second delete is a no-op")
	require.NoError(t, f.messages.Delete(f.ctx, msg.ID, carol.ID), "even for someone who could not delete it")

	list, err = f.messages.List(f.ctx, group.ID, carol.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDeleted)
	assert.Nil(t, list[0].Content)
	assert.Equal(t, service.DeletedMessageLabel, list[0].Placeholder)

	stored, err := f.store.Messages().GetByID(f.ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Content)
	assert.Equal(t, admin.ID, *stored.DeletedBy)

	assert.ErrorIs(t, f.messages.Delete(f.ctx, 999, admin.ID), domain.ErrNotFound)
}

func TestTextValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	chat, err := f.chats.CreatePrivate(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.messages.Send(f.ctx, chat.ID, alice.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.messages.Send(f.ctx, chat.ID, alice.ID, strings.Repeat("x", service.MaxMessageLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.messages.Send(f.ctx, 999, alice.ID, "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := f.messages.Send(f.ctx, chat.ID, alice.ID, "secret text")
	require.NoError(t, err)
	raw, err := f.store.Messages().GetByID(f.ctx, stored.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret text", *raw.Content, "content is encrypted at rest")
}

func TestSendFile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	chat, err := f.chats.CreatePrivate(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := f.messages.SendFile(f.ctx, chat.ID, alice.ID, strings.NewReader("file body"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", *msg.FileName)
	assert.Equal(t, int64(9), *msg.FileSize)

	_, err = f.messages.SendFile(f.ctx, chat.ID, alice.ID, strings.NewReader("x"), "run.exe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.messages.SendFile(f.ctx, chat.ID, alice.ID, strings.NewReader(strings.Repeat("x", 2048)), "big.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.messages.SendFile(f.ctx, chat.ID, carol.ID, strings.NewReader("x"), "a.txt")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := f.messages.List(f.ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Content)
	require.NotNil(t, list[0].FileURL)
	assert.True(t, strings.HasPrefix(*list[0].FileURL, "/uploads/"))

	assert.ErrorIs(t, f.messages.Delete(f.ctx, msg.ID, bob.ID), domain.ErrForbidden)
	require.NoError(t, f.messages.Delete(f.ctx, msg.ID, alice.ID))
	list, err = f.messages.List(f.ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, list[0].FileURL)
}

func TestListForUserOrdering(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	channel, err := f.chats.CreateChannel(f.ctx, alice.ID, service.ChatCreateInput{Name: "C"})
	require.NoError(t, err)
	group, err := f.chats.CreateGroup(f.ctx, alice.ID, service.ChatCreateInput{Name: "G"})
	require.NoError(t, err)
	private, err := f.chats.CreatePrivate(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	list, err := f.chats.ListForUser(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{private.ID, group.ID, channel.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, domain.RoleAdmin, list[1].Role)
	assert.ElementsMatch(t, []int64{alice.ID, bob.ID}, list[0].Participants)
}

func strptr(s string) *string { return &s }

func TestSearchIsCappedAtTen(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.register(t, fmt.Sprintf("user%02d", i))
	}

	found, err := f.users.Search(f.ctx, "user")
	require.NoError(t, err)
	require.Len(t, found, 10)
	assert.Equal(t, "user00", found[0].Username)
}

func TestConcurrentSelfDemotionKeepsAnAdmin(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	group, err := f.chats.CreateGroup(f.ctx, alice.ID, service.ChatCreateInput{Name: "G", MemberIDs: []int64{bob.ID}})
	require.NoError(t, err)
	require.NoError(t, f.members.ChangeGroupMemberRole(f.ctx, group.ID, alice.ID, bob.ID, domain.RoleAdmin))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{alice.ID, bob.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.members.ChangeGroupMemberRole(f.ctx, group.ID, id, id, domain.RoleMember)
		}()
	}
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly one self-demotion must be refused")

	admins, err := f.store.Members().CountGroupAdmins(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}
