// Package photozip streams zip archives of server-side photo directories.
//
// Clients never see directory names. At startup every immediate
// subdirectory of the photo root is registered under a token derived from
// its name, and clients request archives by token.
//
// An archive is produced by an external archiver (zip by default) whose
// standard output is relayed to the client chunk by chunk, so nothing is
// buffered in memory or on disk beyond a single chunk.
//
// # Key Components
//
//   - Registry: immutable token to directory map, built once by LoadRegistry
//   - Streamer: opens a Session per request (list directory, start archiver)
//   - Session: relays archiver output to a ChunkWriter and owns the process
//   - ArchiveProcess: the archiver child process (start, read, terminate, wait)
//   - Heartbeat: never-ending timestamp stream for connection checks
//
// # Session lifecycle
//
// Open performs all work that can fail cleanly: listing the directory and
// starting the archiver. Only after Open succeeds should the caller commit
// response headers and call Stream. Close must run on every exit path; it
// kills the archiver if it is still running and reaps it.
//
//	sess, err := streamer.Open(ctx, entry)
//	if err != nil {
//	    // nothing sent yet: answer with an error status
//	}
//	defer sess.Close()
//
//	// commit headers here
//	stats, err := sess.Stream(ctx, w)
//
// See the http package for the REST surface and the filesystem package for
// the PhotoStore implementation.
package photozip
