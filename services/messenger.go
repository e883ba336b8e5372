package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"remindme-server/models"
)

// WebhookMessenger delivers private messages by POSTing them as JSON.
type WebhookMessenger struct {
	endpoint string
	client   *http.Client
}

func NewWebhookMessenger(endpoint string, client *http.Client) *WebhookMessenger {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookMessenger{endpoint: endpoint, client: client}
}

func (m *WebhookMessenger) SendPrivateMessage(ctx context.Context, to models.Actor, subject, body string) error {
	data, err := json.Marshal(models.PrivateMessage{To: to, Subject: subject, Body: body})
	if err != nil {
		return errors.Wrap(err, "encode message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// MailboxMessenger drops private messages into a per-actor mailbox in
// object storage, one JSON object per message.
type MailboxMessenger struct {
	storage StorageService
	now     func() time.Time
}

func NewMailboxMessenger(storage StorageService) *MailboxMessenger {
	return &MailboxMessenger{storage: storage, now: time.Now}
}

// MailboxKey returns the object key for a message delivered at t.
func MailboxKey(actorID string, t time.Time, id string) string {
	return fmt.Sprintf("mailbox/%s/%d-%s.json", url.PathEscape(actorID), t.UnixMilli(), id)
}

func (m *MailboxMessenger) SendPrivateMessage(ctx context.Context, to models.Actor, subject, body string) error {
	data, err := json.Marshal(models.PrivateMessage{To: to, Subject: subject, Body: body})
	if err != nil {
		return errors.Wrap(err, "encode message")
	}

	key := MailboxKey(to.ID, m.now(), uuid.New().String())
	if err := m.storage.PutObject(ctx, key, data, "application/json"); err != nil {
		return errors.Wrap(err, "store message")
	}
	return nil
}
