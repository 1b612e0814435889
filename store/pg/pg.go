// Package pg is the Postgres implementation of store.Store.
package pg

import (
	"context"
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	pgxdb "github.com/manavc-13/KIIT-Mailer/db/pg/pgx"
	"github.com/manavc-13/KIIT-Mailer/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ store.Store = (*Store)(nil)

type Store struct {
	db *pgxdb.DB
}

// Open connects, migrates and returns the store. Close releases the pool.
func Open(ctx context.Context, cfg pgxdb.Config) (*Store, error) {
	db, err := pgxdb.NewDefault(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, migrations, "migrations"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func New(db *pgxdb.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

const draftColumns = `id, recipient, subject, body, mode, display_name, reply_to, created_at, updated_at`

func scanDraft(row pgx.Row) (store.Draft, error) {
	var d store.Draft
	err := row.Scan(&d.ID, &d.To, &d.Subject, &d.Body, &d.Mode, &d.DisplayName, &d.ReplyTo, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) ListDrafts(ctx context.Context) ([]store.Draft, error) {
	rows, err := s.db.Query(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list drafts")
	}
	defer rows.Close()

	drafts := []store.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan draft")
		}
		drafts = append(drafts, d)
	}
	return drafts, errors.Wrap(rows.Err(), "failed to list drafts")
}

func (s *Store) CreateDraft(ctx context.Context, d store.Draft) (store.Draft, error) {
	d.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO drafts (id, recipient, subject, body, mode, display_name, reply_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+draftColumns,
		d.ID, d.To, d.Subject, d.Body, d.Mode, d.DisplayName, d.ReplyTo)

	saved, err := scanDraft(row)
	if err != nil {
		return store.Draft{}, errors.Wrap(err, "failed to create draft")
	}
	return saved, nil
}

func (s *Store) UpdateDraft(ctx context.Context, d store.Draft) (store.Draft, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE drafts
		SET recipient = $2, subject = $3, body = $4, mode = $5, display_name = $6, reply_to = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+draftColumns,
		d.ID, d.To, d.Subject, d.Body, d.Mode, d.DisplayName, d.ReplyTo)

	saved, err := scanDraft(row)
	if pgxdb.IsNoRows(err) {
		return store.Draft{}, errors.Wrapf(store.ErrNotFound, "draft %s", d.ID)
	}
	if err != nil {
		return store.Draft{}, errors.Wrap(err, "failed to update draft")
	}
	return saved, nil
}

func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete draft")
}

func (s *Store) AddActivity(ctx context.Context, a store.Activity) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO activity (type, description, created_at) VALUES ($1, $2, $3)`,
		a.Type, a.Description, createdAt(a.CreatedAt))
	return errors.Wrap(err, "failed to add activity")
}

func (s *Store) ListActivity(ctx context.Context, limit int) ([]store.Activity, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, type, description, created_at FROM activity ORDER BY created_at DESC, id DESC LIMIT $1`,
		limitOrAll(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list activity")
	}
	defer rows.Close()

	out := []store.Activity{}
	for rows.Next() {
		var a store.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan activity")
		}
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "failed to list activity")
}

func (s *Store) AddSentMail(ctx context.Context, m store.SentMail) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sent_mails (recipient, subject, message_id, created_at) VALUES ($1, $2, $3, $4)`,
		m.To, m.Subject, m.MessageID, createdAt(m.CreatedAt))
	return errors.Wrap(err, "failed to add sent mail")
}

func (s *Store) ListSentMails(ctx context.Context, limit int) ([]store.SentMail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, recipient, subject, message_id, created_at FROM sent_mails ORDER BY created_at DESC, id DESC LIMIT $1`,
		limitOrAll(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sent mails")
	}
	defer rows.Close()

	out := []store.SentMail{}
	for rows.Next() {
		var m store.SentMail
		if err := rows.Scan(&m.ID, &m.To, &m.Subject, &m.MessageID, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan sent mail")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "failed to list sent mails")
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// limitOrAll maps a non-positive limit to NULL, which LIMIT treats as no limit.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
