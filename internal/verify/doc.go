// Package verify runs the deep integrity pass: a full null-target decode of
// each scanned file with the decoder's diagnostic stream classified line by
// line, plus a packet-level keyframe interval analysis of the opening
// minute. Hard decode errors fail the file; timestamp disorder and sparse
// keyframes become structured quality flags that never flip the pass/fail
// outcome on their own.
package verify
