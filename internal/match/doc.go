// Package match resolves an external catalog item against the local movie
// snapshot. Five strategies run in a fixed priority order, from exact path
// and provider-id matches down to a fuzzy title comparison; the first hit
// wins and carries a confidence plus an ambiguity marker the reconciler
// writes to the audit log. Resolution is pure: no I/O, no side effects.
package match
