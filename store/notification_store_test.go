package store

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castworks/designdesk/model"
)

func makeNotification(userID string, read bool, createdAt time.Time) model.Notification {
	return model.Notification{
		ID:        uuid.Must(uuid.NewV4()).String(),
		UserID:    userID,
		Type:      model.NotifyFormUpdated,
		Title:     "Customer Form Updated",
		Message:   "The Customer Form has been updated.",
		Data:      map[string]any{"formType": "customer"},
		Read:      read,
		CreatedAt: createdAt,
	}
}

func TestNotificationListNewestFirst(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	old := makeNotification("u1", false, now.Add(-2*time.Hour))
	recent := makeNotification("u1", false, now)
	other := makeNotification("u2", false, now)
	require.NoError(t, notifications.CreateBatch(ctx, []model.Notification{old, recent, other}))

	list, err := notifications.List(ctx, "u1", 10, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.Equal(t, old.ID, list[1].ID)
	assert.Equal(t, "customer", list[0].Data["formType"])
}

func TestNotificationUnreadCountIgnoresLimit(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	batch := []model.Notification{}
	for i := 0; i < 5; i++ {
		batch = append(batch, makeNotification("u1", false, now.Add(time.Duration(i)*time.Second)))
	}
	batch = append(batch, makeNotification("u1", true, now))
	require.NoError(t, notifications.CreateBatch(ctx, batch))

	list, err := notifications.List(ctx, "u1", 2, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	count, err := notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestNotificationListUnreadOnly(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	unread := makeNotification("u1", false, now)
	read := makeNotification("u1", true, now.Add(time.Second))
	require.NoError(t, notifications.CreateBatch(ctx, []model.Notification{unread, read}))

	list, err := notifications.List(ctx, "u1", 10, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, unread.ID, list[0].ID)
}

func TestNotificationMarkRead(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	n := makeNotification("u1", false, time.Now().UTC())
	require.NoError(t, notifications.CreateBatch(ctx, []model.Notification{n}))

	updated, err := notifications.MarkRead(ctx, n.ID, "u1")
	require.NoError(t, err)
	assert.True(t, updated.Read)

	count, err := notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNotificationOwnershipEnforced(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	n := makeNotification("u1", false, time.Now().UTC())
	require.NoError(t, notifications.CreateBatch(ctx, []model.Notification{n}))

	_, err := notifications.MarkRead(ctx, n.ID, "intruder")
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = notifications.Delete(ctx, n.ID, "intruder")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the record is untouched
	list, err := notifications.List(ctx, "u1", 10, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
}

func TestNotificationDelete(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	n := makeNotification("u1", false, time.Now().UTC())
	require.NoError(t, notifications.CreateBatch(ctx, []model.Notification{n}))

	require.NoError(t, notifications.Delete(ctx, n.ID, "u1"))
	assert.ErrorIs(t, notifications.Delete(ctx, n.ID, "u1"), ErrNotFound)

	_, err := notifications.MarkRead(ctx, n.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationPurgeExpired(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	expired := makeNotification("u1", true, now.Add(-31*24*time.Hour))
	unreadExpired := makeNotification("u1", false, now.Add(-40*24*time.Hour))
	fresh := makeNotification("u1", false, now)
	require.NoError(t, notifications.CreateBatch(ctx, []model.Notification{expired, unreadExpired, fresh}))

	removed, err := notifications.PurgeExpired(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	list, err := notifications.List(ctx, "u1", 10, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)
}

func TestNotificationCreateBatchChunks(t *testing.T) {
	notifications := NewNotificationStore(testDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	batch := make([]model.Notification, insertChunkSize+7)
	for i := range batch {
		batch[i] = makeNotification("u1", false, now)
	}
	require.NoError(t, notifications.CreateBatch(ctx, batch))

	count, err := notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, len(batch), count)
}
