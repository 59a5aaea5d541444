// Package mediaserver fetches the movie inventory of a Jellyfin-compatible
// media server so the reconciler can line it up against the local catalog.
// The client is strictly read-only.
package mediaserver
