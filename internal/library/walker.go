package library

import (
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"reeldex/internal/services"
)

// Folder is one movie directory discovered under the library root.
type Folder struct {
	Path       string
	Name       string
	Title      string
	Year       *int
	VideoFiles []string
}

// titleYearPattern matches the "Title (Year)" naming convention with a
// four-digit year in trailing parentheses.
var titleYearPattern = regexp.MustCompile(`^(.*)\((\d{4})\)\s*$`)

var videoExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".m4v":  {},
	".mov":  {},
	".wmv":  {},
	".ts":   {},
	".m2ts": {},
	".webm": {},
	".mpg":  {},
	".mpeg": {},
	".flv":  {},
	".vob":  {},
	".ogv":  {},
}

// junkSuffixes mark partially transferred or download-manager droppings that
// look like video files but are not playable yet.
var junkSuffixes = []string{".part", ".partial", ".!qb", ".tmp"}

// Walk returns a lazy sequence of movie folders under root. The only fatal
// error is a root that cannot be listed; an unreadable subdirectory is
// skipped, and a subdirectory with no principal video file is not yielded.
// The walker does not recurse, so extras and featurettes subfolders are
// ignored.
func Walk(root string) (iter.Seq[Folder], error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "library", "walk", "read library root", err)
	}
	return func(yield func(Folder) bool) {
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			folderPath := filepath.Join(root, entry.Name())
			videos, err := videoFiles(folderPath)
			if err != nil || len(videos) == 0 {
				continue
			}
			title, year := ParseFolderName(entry.Name())
			folder := Folder{
				Path:       folderPath,
				Name:       entry.Name(),
				Title:      title,
				Year:       year,
				VideoFiles: videos,
			}
			if !yield(folder) {
				return
			}
		}
	}, nil
}

// ParseFolderName splits a "Title (Year)" folder name. When the trailing
// year is absent the whole trimmed name becomes the title and the year is
// nil; this never fails.
func ParseFolderName(name string) (string, *int) {
	matches := titleYearPattern.FindStringSubmatch(name)
	if matches == nil {
		return strings.TrimSpace(name), nil
	}
	title := strings.TrimSpace(matches[1])
	if title == "" {
		title = strings.TrimSpace(name)
	}
	year, err := strconv.Atoi(matches[2])
	if err != nil {
		return title, nil
	}
	return title, &year
}

func videoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !IsPrincipalVideo(name) {
			continue
		}
		videos = append(videos, filepath.Join(dir, name))
	}
	sort.Strings(videos)
	return videos, nil
}

// IsPrincipalVideo reports whether a file name looks like a main feature:
// a known video extension, not hidden, not a partial transfer, and not a
// sample or trailer.
func IsPrincipalVideo(name string) bool {
	// Dotfiles cover fuse_hidden droppings too (.fuse_hiddenXXXX).
	if strings.HasPrefix(name, ".") {
		return false
	}
	lower := strings.ToLower(name)
	for _, suffix := range junkSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	ext := filepath.Ext(lower)
	if _, ok := videoExtensions[ext]; !ok {
		return false
	}
	base := strings.TrimSuffix(lower, ext)
	if isSampleOrTrailer(base) {
		return false
	}
	return true
}

func isSampleOrTrailer(base string) bool {
	if base == "sample" || base == "trailer" {
		return true
	}
	for _, marker := range []string{"-sample", ".sample", "_sample", " sample", "-trailer", ".trailer", "_trailer", " trailer"} {
		if strings.HasSuffix(base, marker) {
			return true
		}
	}
	return false
}
