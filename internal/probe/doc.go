// Package probe invokes ffprobe against a single video file and distills
// its stream and format metadata into the technical record the catalog
// stores: resolution class, bit depth, HDR formats, audio and subtitle
// inventory, size efficiency, and the release group parsed from the file
// name. The raw ffprobe JSON is kept alongside the derived fields.
package probe
