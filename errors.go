package photozip

import "errors"

var (
	// ErrNotFound is returned when a token or directory is not known.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateToken is returned when two directory names derive the same token.
	ErrDuplicateToken = errors.New("duplicate token")
	// ErrDirectoryList is returned when a photo directory cannot be enumerated.
	ErrDirectoryList = errors.New("list directory")
	// ErrProcessSpawn is returned when the archiver cannot be started.
	ErrProcessSpawn = errors.New("start archiver")
	// ErrStreamRead is returned when reading the archiver output fails mid-stream.
	ErrStreamRead = errors.New("read archive stream")
	// ErrClientWrite is returned when the archive cannot be written to the client.
	ErrClientWrite = errors.New("write archive stream")
)
