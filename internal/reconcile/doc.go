// Package reconcile lines the media server's movie inventory up against the
// local catalog. Each external item is resolved through the disambiguation
// strategies, matched movies absorb the server's enrichment metadata, and
// every attempt lands in the append-only audit log. Ambiguous matches are
// applied optimistically but queued for human review.
package reconcile
