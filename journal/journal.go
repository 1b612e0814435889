// Package journal keeps the operator's session log: a capped, append-only
// list of what happened during batches.
package journal

import (
	"context"
	"time"
)

// MaxEntries is how many entries a journal keeps. Older entries are dropped.
const MaxEntries = 200

// Entry types.
const (
	TypeSystem  = "system"
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
)

type Entry struct {
	Type    string    `json:"type"`
	Message string    `json:"msg"`
	Time    time.Time `json:"time"`
}

type Journal interface {
	Append(ctx context.Context, e Entry) error
	// List returns the kept entries, oldest first.
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
	Close() error
}
