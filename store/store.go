// Package store persists drafts and the relay's activity and sent-mail logs.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// Draft is a saved composition. JSON names follow the browser client.
type Draft struct {
	ID          string    `json:"_id"`
	To          string    `json:"to,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Body        string    `json:"body,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	ReplyTo     string    `json:"replyTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Activity types written by the relay.
const (
	ActivityMailSent  = "MAIL_SENT"
	ActivityMailError = "MAIL_ERROR"
)

type Activity struct {
	ID          int64     `json:"_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SentMail struct {
	ID        int64     `json:"_id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	MessageID string    `json:"messageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// List limits used by the relay.
const (
	ActivityLimit = 100
	SentMailLimit = 50
)

type Drafts interface {
	// ListDrafts returns drafts, most recently updated first.
	ListDrafts(ctx context.Context) ([]Draft, error)
	// CreateDraft assigns ID and timestamps.
	CreateDraft(ctx context.Context, d Draft) (Draft, error)
	// UpdateDraft returns ErrNotFound when d.ID does not exist.
	UpdateDraft(ctx context.Context, d Draft) (Draft, error)
	// DeleteDraft is a no-op for unknown ids.
	DeleteDraft(ctx context.Context, id string) error
}

type Logs interface {
	AddActivity(ctx context.Context, a Activity) error
	// ListActivity returns up to limit entries, newest first.
	ListActivity(ctx context.Context, limit int) ([]Activity, error)
	AddSentMail(ctx context.Context, m SentMail) error
	// ListSentMails returns up to limit entries, newest first.
	ListSentMails(ctx context.Context, limit int) ([]SentMail, error)
}

type Store interface {
	Drafts
	Logs
}

// SaveDraft updates d when it carries an id that exists and inserts it
// otherwise. created reports whether a new draft was inserted.
func SaveDraft(ctx context.Context, s Drafts, d Draft) (saved Draft, created bool, err error) {
	if d.ID != "" {
		saved, err = s.UpdateDraft(ctx, d)
		if err == nil {
			return saved, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Draft{}, false, err
		}
		d.ID = ""
	}
	saved, err = s.CreateDraft(ctx, d)
	if err != nil {
		return Draft{}, false, err
	}
	return saved, true, nil
}
