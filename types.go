package photozip

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// DirectoryEntry pairs a photo directory with the token clients use to
// request it.
type DirectoryEntry struct {
	Token string
	Name  string
}

// PhotoStore gives access to the photo directories under the configured root.
type PhotoStore interface {
	// Directories returns the names of the immediate subdirectories of the root.
	Directories(ctx context.Context) ([]string, error)

	// Entries returns the names of the direct entries of dir.
	// Returns ErrNotFound if dir does not exist.
	Entries(ctx context.Context, dir string) ([]string, error)

	// Path returns the absolute filesystem path of dir.
	Path(dir string) string
}

// ChunkWriter receives archive or heartbeat chunks. Flush makes the data
// written so far visible to the client.
type ChunkWriter interface {
	io.Writer
	Flush() error
}

// Outcome is the terminal state of a stream session.
type Outcome string

const (
	OutcomeComplete  Outcome = "complete"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// StreamStats describes a finished stream session.
type StreamStats struct {
	SessionID uuid.UUID
	Directory string
	Bytes     int64
	Chunks    int
	// ExitCode is the archiver's exit status, or -1 when the stream did
	// not run to completion.
	ExitCode int
	Outcome  Outcome
	Duration time.Duration
}

// ArchiverConfig describes the external archiving executable. The
// enumerated file names are appended after Args.
type ArchiverConfig struct {
	Command string
	Args    []string
}

// Validate checks that the archiver command is set.
func (c ArchiverConfig) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("%w: archiver command is empty", ErrInvalidInput)
	}
	return nil
}
