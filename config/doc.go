// Package config provides configuration loading and validation for photozip.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Legacy environment variables (PHOTOS_DIR, PORT, DELAY)
//  3. Configuration file(s) - multiple files merged left-to-right
//  4. Environment variables (PHOTOZIP_ prefix)
//  5. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with PHOTOZIP_ prefix:
//   - server.port → PHOTOZIP_SERVER_PORT
//   - photos.dir → PHOTOZIP_PHOTOS_DIR
//   - archive.chunk_delay → PHOTOZIP_ARCHIVE_CHUNK_DELAY
//
// DELAY is a whole number of seconds; PHOTOZIP_ARCHIVE_CHUNK_DELAY takes a
// duration such as "250ms".
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Photo directory and archiver command must be set
//   - Batch size must be 1-65536 KiB
//   - Chunk delay must not be negative; heartbeat interval must be positive
//   - Log level must be debug, info, warn, or error
package config
