package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsa-dv/messenger/internal/model"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
	"github.com/parsa-dv/messenger/internal/pkg/timeutil"
	"github.com/parsa-dv/messenger/internal/presence"
	"github.com/parsa-dv/messenger/internal/repo"
	"github.com/parsa-dv/messenger/internal/service"
	"github.com/parsa-dv/messenger/test/testutil"
)

type chatEnv struct {
	env      *authEnv
	messages *service.MessageService
	contacts *service.ContactService
	tracker  *presence.Tracker
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)
	users := repo.NewUserRepo(db)
	messages := repo.NewMessageRepo(db)
	tracker := presence.NewTracker()
	env := &authEnv{users: users, sender: &capturingSender{}}
	return &chatEnv{
		env:      env,
		messages: service.NewMessageService(messages, users, tracker),
		contacts: service.NewContactService(users, messages, tracker),
		tracker:  tracker,
	}
}

func seedVerifiedUser(t *testing.T, users *repo.UserRepo, username string) int64 {
	t.Helper()
	user := &model.User{
		Username:      username,
		Email:         username + "@example.com",
		PasswordHash:  "x",
		EmailVerified: 1,
		Ctime:         timeutil.NowUnix(),
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user.ID
}

func TestContactsCarryUnreadAndTyping(t *testing.T) {
	chat := newChatEnv(t)
	ctx := context.Background()
	alice := seedVerifiedUser(t, chat.env.users, "alice")
	bob := seedVerifiedUser(t, chat.env.users, "bob")
	carol := seedVerifiedUser(t, chat.env.users, "carol")

	_, err := chat.messages.Append(ctx, bob, alice, "hello", "", "")
	require.NoError(t, err)
	_, err = chat.messages.Append(ctx, bob, alice, "are you there?", "", "")
	require.NoError(t, err)
	chat.tracker.Notify(carol, alice)

	contacts, err := chat.contacts.Contacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	byName := map[string]int64{}
	for _, c := range contacts {
		byName[c.Username] = c.UnreadCount
	}
	require.EqualValues(t, 2, byName["bob"])
	require.EqualValues(t, 0, byName["carol"])
	for _, c := range contacts {
		if c.Username == "carol" {
			require.True(t, c.IsTyping)
		} else {
			require.False(t, c.IsTyping)
		}
	}

	// typing toward alice must not leak into bob's view
	contacts, err = chat.contacts.Contacts(ctx, bob)
	require.NoError(t, err)
	for _, c := range contacts {
		require.False(t, c.IsTyping)
	}
}

func TestMarkReadClearsContactUnread(t *testing.T) {
	chat := newChatEnv(t)
	ctx := context.Background()
	alice := seedVerifiedUser(t, chat.env.users, "alice")
	bob := seedVerifiedUser(t, chat.env.users, "bob")

	_, err := chat.messages.Append(ctx, bob, alice, "ping", "", "")
	require.NoError(t, err)

	require.NoError(t, chat.messages.MarkRead(ctx, alice, bob))
	require.NoError(t, chat.messages.MarkRead(ctx, alice, bob))

	contacts, err := chat.contacts.Contacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.EqualValues(t, 0, contacts[0].UnreadCount)

	// the sender reading their own thread does not consume bob's receipt
	count, err := chat.messages.UnreadCount(ctx, bob, alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestAppendRequiresTextOrAttachment(t *testing.T) {
	chat := newChatEnv(t)
	ctx := context.Background()
	alice := seedVerifiedUser(t, chat.env.users, "alice")
	bob := seedVerifiedUser(t, chat.env.users, "bob")

	_, err := chat.messages.Append(ctx, alice, bob, "", "", "")
	_, ok := appErr.AsValidation(err)
	require.True(t, ok)

	msg, err := chat.messages.Append(ctx, alice, bob, "", "/uploads/abc.png", "image")
	require.NoError(t, err)
	require.Equal(t, "alice", msg.SenderUsername)
	require.Equal(t, "bob", msg.ReceiverUsername)

	_, err = chat.messages.Append(ctx, alice, 9999, "hi", "", "")
	require.True(t, appErr.IsNotFound(err))
}

func TestConversationReportsPeerTyping(t *testing.T) {
	chat := newChatEnv(t)
	ctx := context.Background()
	alice := seedVerifiedUser(t, chat.env.users, "alice")
	bob := seedVerifiedUser(t, chat.env.users, "bob")

	_, err := chat.messages.Append(ctx, alice, bob, "hi", "", "")
	require.NoError(t, err)

	chat.tracker.Notify(bob, alice)
	messages, typing, err := chat.messages.Conversation(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.True(t, typing)

	// the viewer's own typing is invisible to them
	_, typing, err = chat.messages.Conversation(ctx, bob, alice)
	require.NoError(t, err)
	require.False(t, typing)
}

func TestSearchMatchesSubstringExcludingViewer(t *testing.T) {
	chat := newChatEnv(t)
	ctx := context.Background()
	alice := seedVerifiedUser(t, chat.env.users, "alice")
	seedVerifiedUser(t, chat.env.users, "alison")
	seedVerifiedUser(t, chat.env.users, "bob")

	results, err := chat.contacts.Search(ctx, alice, "ali")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "alison", results[0].Username)
}
