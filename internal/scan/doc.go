// Package scan orchestrates a full library pass: walk the root, upsert a
// movie per folder, and drain the discovered files through a bounded pool
// of probe workers. Files that already carry a successful scan are skipped
// unless a rescan is forced, which makes an interrupted scan cheap to
// restart. Per-file failures are persisted on the file row and never abort
// the batch.
package scan
