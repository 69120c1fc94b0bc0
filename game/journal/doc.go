// Package journal keeps an append-only record of placement events.
//
// Events are written as JSON lines into zstd-compressed files, one file per
// UTC hour. A Journal is installed on the decoration service as an event
// sink; ReadAll and ReadFile decode the files again for inspection.
package journal
