// Package notify creates one notification per user in response to a
// privileged mutation. Fanout runs in the context of the triggering
// request but never fails it: callers log and swallow any error.
package notify

import (
	"context"
	"time"

	"github.com/gofrs/uuid"

	"github.com/castworks/designdesk/model"
	"github.com/castworks/designdesk/store"
)

type Fanout struct {
	Users         *store.UserStore
	Notifications *store.NotificationStore
}

// TemplateUpdated notifies everyone except the updating admin that a form
// template changed.
func (f Fanout) TemplateUpdated(ctx context.Context, tpl model.FormTemplate, updatedBy string) (int, error) {
	label := tpl.FormType.Label()
	return f.Broadcast(ctx, updatedBy, model.NotifyFormUpdated,
		label+" Updated",
		"The "+label+" has been updated. Changes will take effect when you refresh.",
		map[string]any{
			"formType":   tpl.FormType,
			"formName":   tpl.Name,
			"templateId": tpl.ID,
		},
	)
}

// Broadcast creates one unread notification per user, excluding
// excludeUserID. Zero recipients is a no-op, not an error. Returns the
// number of notifications created.
func (f Fanout) Broadcast(ctx context.Context, excludeUserID string, typ model.NotificationType, title, message string, data map[string]any) (int, error) {
	ids, err := f.Users.ListIDsExcept(ctx, excludeUserID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	notifications := make([]model.Notification, len(ids))
	for i, userID := range ids {
		notifications[i] = model.Notification{
			ID:        uuid.Must(uuid.NewV4()).String(),
			UserID:    userID,
			Type:      typ,
			Title:     title,
			Message:   message,
			Data:      data,
			Read:      false,
			CreatedAt: now,
		}
	}

	err = f.Notifications.CreateBatch(ctx, notifications)
	if err != nil {
		return 0, err
	}
	return len(notifications), nil
}
