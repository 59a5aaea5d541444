// Command reeldex catalogs a local movie library: it scans files with
// ffprobe, deep-verifies them with a full decode, and reconciles the local
// catalog against a media server.
package main
