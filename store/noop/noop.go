// Package noop is an in-memory store used when no database is configured
// and in tests.
package noop

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manavc-13/KIIT-Mailer/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mx       sync.RWMutex
	drafts   map[string]store.Draft
	activity []store.Activity
	sent     []store.SentMail
	now      func() time.Time
}

func New() *Store {
	return &Store{drafts: make(map[string]store.Draft), now: time.Now}
}

func (s *Store) ListDrafts(context.Context) ([]store.Draft, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	out := make([]store.Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Store) CreateDraft(_ context.Context, d store.Draft) (store.Draft, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	d.ID = uuid.NewString()
	d.CreatedAt = s.now()
	d.UpdatedAt = d.CreatedAt
	s.drafts[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDraft(_ context.Context, d store.Draft) (store.Draft, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	old, ok := s.drafts[d.ID]
	if !ok {
		return store.Draft{}, store.ErrNotFound
	}
	d.CreatedAt = old.CreatedAt
	d.UpdatedAt = s.now()
	s.drafts[d.ID] = d
	return d, nil
}

func (s *Store) DeleteDraft(_ context.Context, id string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *Store) AddActivity(_ context.Context, a store.Activity) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	a.ID = int64(len(s.activity) + 1)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.activity = append(s.activity, a)
	return nil
}

func (s *Store) ListActivity(_ context.Context, limit int) ([]store.Activity, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return newestFirst(s.activity, limit), nil
}

func (s *Store) AddSentMail(_ context.Context, m store.SentMail) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	m.ID = int64(len(s.sent) + 1)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.sent = append(s.sent, m)
	return nil
}

func (s *Store) ListSentMails(_ context.Context, limit int) ([]store.SentMail, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return newestFirst(s.sent, limit), nil
}

func newestFirst[T any](items []T, limit int) []T {
	n := len(items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := len(items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, items[i])
	}
	return out
}
