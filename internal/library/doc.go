// Package library walks a movie library rooted at a single directory and
// yields one folder record per immediate subdirectory that holds at least
// one principal video file. Folder names in the "Title (Year)" convention
// are split into title and year; anything else is kept verbatim as the
// title with no year.
package library
