// Package logging provides the slog construction and attribute helpers used
// across reeldex. All components log through *slog.Logger instances built
// here; helpers keep attribute keys consistent between console and JSON
// output.
package logging
