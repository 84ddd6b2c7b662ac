package photozip_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/photozip"
	"github.com/sagarc03/photozip/filesystem"
	"github.com/sagarc03/photozip/internal/clock"
)

// MockPhotoStore is a mock implementation of photozip.PhotoStore
type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) Directories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPhotoStore) Entries(ctx context.Context, dir string) ([]string, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPhotoStore) Path(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

// requireTool skips the test when an executable the fake archivers rely on
// is not installed.
func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

// photoRoot creates a photo root with one directory holding files and
// returns a store over it.
func photoRoot(t *testing.T, dir string, files map[string]string) (*filesystem.Store, string) {
	t.Helper()

	root := t.TempDir()
	target := filepath.Join(root, dir)
	require.NoError(t, os.Mkdir(target, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(target, name), []byte(content), 0o644))
	}

	store, err := filesystem.Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, target
}

// catArchiver concatenates the directory's files, which makes the expected
// stream easy to compute.
var catArchiver = photozip.ArchiverConfig{Command: "cat"}

// endlessArchiver never finishes writing.
var endlessArchiver = photozip.ArchiverConfig{
	Command: "sh",
	Args:    []string{"-c", "while :; do echo chunk; done", "sh"},
}

// recordingWriter is a ChunkWriter that keeps everything written along
// with the clock time of each write.
type recordingWriter struct {
	mu      sync.Mutex
	clock   clock.Clock
	buf     bytes.Buffer
	writes  []time.Time
	sizes   []int
	flushes int
	onWrite func(n int)
	failErr error
}

func newRecordingWriter(c clock.Clock) *recordingWriter {
	return &recordingWriter{clock: c}
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	if w.failErr != nil {
		err := w.failErr
		w.mu.Unlock()
		return 0, err
	}
	w.buf.Write(p)
	w.writes = append(w.writes, w.clock.Now())
	w.sizes = append(w.sizes, len(p))
	count := len(w.writes)
	hook := w.onWrite
	w.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	return len(p), nil
}

func (w *recordingWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushes++
	return nil
}

func (w *recordingWriter) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Clone(w.buf.Bytes())
}

func (w *recordingWriter) String() string {
	return string(w.Bytes())
}

func (w *recordingWriter) WriteTimes() []time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Time(nil), w.writes...)
}

var errWriteFailed = errors.New("write failed")
