// Package timeouts centralizes the context deadlines used for database
// work inside HTTP handlers.
//
// Guidelines:
//   - Ping: health checks and connectivity probes
//   - Short: single-document reads and writes
//   - Medium: list queries and load-mutate-save flows
//   - Long: multi-collection reads (feed population, my-teams)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the deadline for connectivity probes.
func Ping() time.Duration { return ping }

// Short returns the deadline for simple single-document operations.
func Short() time.Duration { return short }

// Medium returns the deadline for list queries and aggregate mutations.
func Medium() time.Duration { return medium }

// Long returns the deadline for queries that fan out across collections.
func Long() time.Duration { return long }
