// Package catalog persists the movie library in an embedded SQLite database.
//
// All writes are single-row upserts keyed by folder or file path, which makes
// every operation safe to repeat: a scan interrupted halfway can simply run
// again. List-valued file attributes (HDR formats, audio tracks, subtitle
// languages, verify flags) are stored as JSON arrays in text columns to stay
// compatible with existing catalogs.
package catalog
