package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a program is not found.
var ErrNotFound = errors.New("program not found")

// ProgramRecord is one persisted registration: the compiled bytes stored
// under a program name, with the hash of the source they were compiled
// from.
type ProgramRecord struct {
	Name         string
	SourceHash   string
	Bytes        []byte
	RegisteredAt time.Time
}

// ProgramStore persists registered program bytes so a worker restart can
// repopulate the program cache. Persistence failures are never fatal to a
// request; the in-memory cache remains authoritative.
type ProgramStore interface {
	SaveProgram(ctx context.Context, rec *ProgramRecord) error
	GetProgram(ctx context.Context, name string) (*ProgramRecord, error)
	ListPrograms(ctx context.Context) ([]*ProgramRecord, error)
	Close() error
}
