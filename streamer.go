package photozip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/photozip/internal/clock"
)

// DefaultBatchSize is the archive chunk size used when none is configured.
const DefaultBatchSize = 100 << 10

// StreamerConfig configures archive streaming.
type StreamerConfig struct {
	Archiver ArchiverConfig
	// BatchSize is the maximum number of bytes read from the archiver per chunk.
	BatchSize int
	// ChunkDelay is a pause applied after every chunk. Zero disables it.
	ChunkDelay time.Duration
	Clock      clock.Clock
}

// Streamer opens archive stream sessions for registered photo directories.
type Streamer struct {
	store PhotoStore
	cfg   StreamerConfig
}

// NewStreamer creates a Streamer reading directories from store.
func NewStreamer(store PhotoStore, cfg StreamerConfig) (*Streamer, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: photo store is nil", ErrInvalidInput)
	}
	if err := cfg.Archiver.Validate(); err != nil {
		return nil, err
	}
	if cfg.BatchSize < 0 || cfg.ChunkDelay < 0 {
		return nil, fmt.Errorf("%w: negative batch size or chunk delay", ErrInvalidInput)
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}

	return &Streamer{store: store, cfg: cfg}, nil
}

// Open lists the directory and starts the archiver for it. Every failure
// here happens before anything is sent to the client, so callers can
// still answer with a clean error response.
//
// The archiver is bound to ctx: cancelling ctx kills it. Callers must
// Close the returned session.
func (s *Streamer) Open(ctx context.Context, entry DirectoryEntry) (*Session, error) {
	id := uuid.New()
	log := slog.With("session", id, "directory", entry.Name)

	names, err := s.store.Entries(ctx, entry.Name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDirectoryList, entry.Name, err)
	}
	sort.Strings(names)

	proc, err := StartArchive(ctx, s.cfg.Archiver, s.store.Path(entry.Name), archiveOperands(names))
	if err != nil {
		return nil, err
	}
	log.Debug("archiver started", "pid", proc.PID(), "files", len(names))

	return &Session{
		id:        id,
		directory: entry.Name,
		files:     names,
		proc:      proc,
		batchSize: s.cfg.BatchSize,
		delay:     s.cfg.ChunkDelay,
		clock:     s.cfg.Clock,
		log:       log,
		started:   s.cfg.Clock.Now(),
	}, nil
}

// Session is a single archive transfer. It owns its archiver process.
type Session struct {
	id        uuid.UUID
	directory string
	files     []string
	proc      *ArchiveProcess
	batchSize int
	delay     time.Duration
	clock     clock.Clock
	log       *slog.Logger
	started   time.Time

	offset int64
	chunks int
}

// ID returns the session id used in log lines.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Files returns the directory entries handed to the archiver.
func (s *Session) Files() []string {
	return s.files
}

// PID returns the archiver's process id.
func (s *Session) PID() int {
	return s.proc.PID()
}

// Stream relays archiver output to w until the archive is complete, ctx
// is cancelled, or an error occurs. Chunks are written and flushed in the
// order they are read.
//
// On cancellation it returns ctx's error so callers can abort the
// response. Stream does not clean up the archiver; Close does.
func (s *Session) Stream(ctx context.Context, w ChunkWriter) (StreamStats, error) {
	buf := make([]byte, s.batchSize)

	for {
		if err := ctx.Err(); err != nil {
			return s.finish(OutcomeCancelled), err
		}

		s.log.Debug("reading archive chunk", "offset", s.offset)
		n, readErr := s.proc.ReadChunk(buf)

		if n > 0 {
			if err := s.writeChunk(w, buf[:n]); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return s.finish(OutcomeCancelled), ctxErr
				}
				if isClientGone(err) {
					return s.finish(OutcomeCancelled), err
				}
				return s.finish(OutcomeFailed), err
			}
		}

		if readErr != nil {
			// A killed archiver also closes its output, so check ctx
			// before treating end-of-stream as completion.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.finish(OutcomeCancelled), ctxErr
			}
			if errors.Is(readErr, io.EOF) {
				return s.complete()
			}
			return s.finish(OutcomeFailed), fmt.Errorf("%w at offset %d: %w", ErrStreamRead, s.offset, readErr)
		}

		if n == 0 {
			continue
		}

		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return s.finish(OutcomeCancelled), ctx.Err()
			case <-s.clock.After(s.delay):
			}
		}
	}
}

// archiveOperands turns directory entries into archiver operands. Names
// starting with "-" get a "./" prefix so the archiver cannot read them as
// options; zip stores both spellings under the same entry name.
func archiveOperands(names []string) []string {
	operands := make([]string, len(names))
	for i, name := range names {
		if strings.HasPrefix(name, "-") {
			name = "./" + name
		}
		operands[i] = name
	}
	return operands
}

// isClientGone reports whether a write failed because the client closed
// the connection. The write can fail before the request context notices.
func isClientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed)
}

func (s *Session) writeChunk(w ChunkWriter, chunk []byte) error {
	if _, err := w.Write(chunk); err != nil {
		return fmt.Errorf("%w at offset %d: %w", ErrClientWrite, s.offset, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w at offset %d: flush: %w", ErrClientWrite, s.offset, err)
	}
	s.offset += int64(len(chunk))
	s.chunks++
	return nil
}

func (s *Session) complete() (StreamStats, error) {
	stats := s.finish(OutcomeComplete)

	code, err := s.proc.Wait()
	stats.ExitCode = code
	if err != nil {
		s.log.Warn("failed to wait for archiver", "err", err)
	}
	if code != 0 {
		s.log.Warn("archiver exited with non-zero status",
			"exit_code", code,
			"stderr", s.proc.Stderr(),
		)
	}

	return stats, nil
}

func (s *Session) finish(outcome Outcome) StreamStats {
	return StreamStats{
		SessionID: s.id,
		Directory: s.directory,
		Bytes:     s.offset,
		Chunks:    s.chunks,
		ExitCode:  -1,
		Outcome:   outcome,
		Duration:  s.clock.Now().Sub(s.started),
	}
}

// Close kills the archiver if it is still running and reaps it. It is
// safe to call more than once and is meant to be deferred right after
// Open succeeds.
func (s *Session) Close() error {
	err := s.proc.Close()
	s.log.Debug("archive session closed", "bytes", s.offset, "chunks", s.chunks)
	return err
}
