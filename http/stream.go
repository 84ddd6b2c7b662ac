package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/sagarc03/photozip"
)

// responseSink adapts a ResponseWriter to photozip.ChunkWriter.
type responseSink struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newResponseSink(w http.ResponseWriter) *responseSink {
	return &responseSink{w: w, rc: http.NewResponseController(w)}
}

func (s *responseSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Flush pushes buffered bytes to the client. Writers that cannot flush
// still deliver the data when the response ends, so that is not an error.
func (s *responseSink) Flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func logStream(stats photozip.StreamStats, err error) {
	attrs := []any{
		"session", stats.SessionID,
		"directory", stats.Directory,
		"sent", humanize.Bytes(uint64(stats.Bytes)),
		"chunks", stats.Chunks,
		"duration", stats.Duration,
		"outcome", stats.Outcome,
	}

	switch {
	case err == nil:
		slog.Info("archive sent", append(attrs, "exit_code", stats.ExitCode)...)
	case stats.Outcome == photozip.OutcomeCancelled,
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Info("download was interrupted", append(attrs, "reason", err)...)
	default:
		slog.Error("archive stream failed", append(attrs, "err", err)...)
	}
}
