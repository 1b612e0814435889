// Package noop is an in-memory journal.
package noop

import (
	"context"
	"sync"

	"github.com/manavc-13/KIIT-Mailer/journal"
)

var _ journal.Journal = (*Journal)(nil)

type Journal struct {
	mx      sync.Mutex
	max     int
	entries []journal.Entry
}

func New(max int) *Journal {
	if max <= 0 {
		max = journal.MaxEntries
	}
	return &Journal{max: max}
}

func (j *Journal) Append(_ context.Context, e journal.Entry) error {
	j.mx.Lock()
	defer j.mx.Unlock()
	j.entries = append(j.entries, e)
	if over := len(j.entries) - j.max; over > 0 {
		j.entries = append([]journal.Entry(nil), j.entries[over:]...)
	}
	return nil
}

func (j *Journal) List(context.Context) ([]journal.Entry, error) {
	j.mx.Lock()
	defer j.mx.Unlock()
	return append([]journal.Entry(nil), j.entries...), nil
}

func (j *Journal) Clear(context.Context) error {
	j.mx.Lock()
	defer j.mx.Unlock()
	j.entries = nil
	return nil
}

func (j *Journal) Close() error {
	return nil
}
