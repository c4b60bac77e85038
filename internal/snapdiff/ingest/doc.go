// Package ingest drains the paged snapshot diff stream into numbered raw
// page files
//
// Design choices:
// - Pages are captured as verbatim byte copies first, then scanned from the
//   local copy, so a scan never competes with the unreliable source stream.
// - Opens retry only while a page has not materialized yet (not-found); any
//   other open failure aborts the drain.
// - The read-retry budget is shared across the whole drain, not per page.
package ingest
