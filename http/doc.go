// Package http provides the HTTP surface of photozip.
//
// # Routes
//
//	GET /                  index page (configured file or built-in page)
//	GET /archive/{token}/  archive download, heartbeat, or redirect to /404
//	GET /404               "archive does not exist" page
//
// The archive route classifies the token before doing any work:
//
//   - the configured heartbeat token streams a timestamp line per interval
//     until the client disconnects
//   - a registered token streams a zip of the directory with
//     Content-Type application/zip and an attachment disposition
//   - anything else is redirected to /404 with 302 Found
//
// # Streaming and failures
//
// Listing the directory and starting the archiver happen before response
// headers are written, so those failures produce a JSON error body with
// status 500. Once headers are committed the only way to report a failure
// or a client disconnect is to abort the response; the handler panics with
// http.ErrAbortHandler after the archiver has been killed and reaped, and
// the client observes a truncated transfer.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{HeartbeatToken: "7kna"}
//	handler := http.NewHandler(&handlerCfg, registry, streamer, heartbeat)
//	srv := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
//
// # Middleware
//
// Every request passes through chi's RequestID and Recoverer and the
// package's RequestLogger. CORS is applied when HandlerConfig.CORS.Enabled
// is set.
package http
