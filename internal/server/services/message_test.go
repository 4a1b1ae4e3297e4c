package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users    *UserService
	messages *MessageService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newMockDB(t)
	rm := newFakeRepoManager()
	n := &recordingNotifier{ok: true}
	f := &fixture{
		users:    NewUserService(db, rm, testConfig()),
		messages: NewMessageService(db, rm, n),
		notifier: n,
	}
	register(t, f.users, mock, alice())
	register(t, f.users, mock, RegisterInput{Username: "bob", Password: "pw-b", FirstName: "Bob", LastName: "Jones", Phone: "+200"})
	register(t, f.users, mock, RegisterInput{Username: "eve", Password: "pw-e", FirstName: "Eve", LastName: "X", Phone: "+300"})
	return f
}

func TestSend_CreatesAndNotifies(t *testing.T) {
	f := newFixture(t)

	m, err := f.messages.Send(context.Background(), "alice", "bob", "hi bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", m.FromUsername)
	assert.Equal(t, "bob", m.ToUsername)
	assert.Nil(t, m.ReadAt)
	assert.False(t, m.SentAt.IsZero())

	require.Len(t, f.notifier.jobs, 1)
	assert.Equal(t, "alice", f.notifier.jobs[0].FromUsername)
	assert.Equal(t, m.ID, f.notifier.jobs[0].MessageID)
}

func TestSend_DroppedNotificationStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.notifier.ok = false

	_, err := f.messages.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
}

func TestSend_UnknownRecipient(t *testing.T) {
	f := newFixture(t)

	_, err := f.messages.Send(context.Background(), "alice", "ghost", "hi")
	require.ErrorIs(t, err, common.ErrReference)
	assert.Equal(t, "Recipient does not exist", common.MessageOf(err, ""))
	assert.Empty(t, f.notifier.jobs)
}

func TestGet_Participants(t *testing.T) {
	f := newFixture(t)
	m, err := f.messages.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)

	for _, viewer := range []string{"alice", "bob"} {
		d, err := f.messages.Get(context.Background(), viewer, m.ID)
		require.NoError(t, err, viewer)
		assert.Equal(t, "alice", d.FromUser.Username)
		assert.Equal(t, "bob", d.ToUser.Username)
		assert.Nil(t, d.ReadAt)
	}

	_, err = f.messages.Get(context.Background(), "eve", m.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "Unauthorized", common.MessageOf(err, ""))

	_, err = f.messages.Get(context.Background(), "alice", 999)
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "No such message: 999", common.MessageOf(err, ""))
}

func TestMarkRead_OnlyRecipientAndIdempotent(t *testing.T) {
	f := newFixture(t)
	m, err := f.messages.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)

	_, err = f.messages.MarkRead(context.Background(), "alice", m.ID)
	require.ErrorIs(t, err, common.ErrForbidden)

	first, err := f.messages.MarkRead(context.Background(), "bob", m.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	second, err := f.messages.MarkRead(context.Background(), "bob", m.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.ReadAt, *second.ReadAt)

	_, err = f.messages.MarkRead(context.Background(), "bob", 42)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestInboxOutbox(t *testing.T) {
	f := newFixture(t)
	_, err := f.messages.Send(context.Background(), "alice", "bob", "one")
	require.NoError(t, err)
	_, err = f.messages.Send(context.Background(), "bob", "alice", "two")
	require.NoError(t, err)

	out, err := f.users.MessagesFrom(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "bob", out[0].ToUser.Username)

	in, err := f.users.MessagesTo(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "two", in[0].Body)
	assert.Equal(t, "bob", in[0].FromUser.Username)
}
