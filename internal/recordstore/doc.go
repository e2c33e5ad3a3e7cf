// Package recordstore is an embedded, file-backed document store used when
// the primary PostgreSQL database cannot be reached at startup.
//
// Each collection lives in memory as an ordered slice of records and is
// mirrored to one JSON file (users.json, studies.json, notices.json,
// communityPosts.json, comments.json) inside the data directory. Ids come
// from per-collection counters kept in counters.json.
//
// Every mutation is computed on a copy, written to a temporary file in the
// data directory and renamed over the collection file. The in-memory copy is
// replaced only after the rename succeeds, so a failed write returns a
// *PersistError and leaves both memory and disk at the previous state.
//
// Queries are expressed with Expr values built from Eq, Regex, AnyIn, And and
// Or. Sorting always compares the sort field as a timestamp; fields that do
// not parse as dates compare equal and keep their insertion order.
package recordstore
