package library

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestParseFolderName(t *testing.T) {
	cases := []struct {
		name  string
		title string
		year  int
	}{
		{"Heat (1995)", "Heat", 1995},
		{"The Matrix (1999)", "The Matrix", 1999},
		{"Blade Runner 2049 (2017)", "Blade Runner 2049", 2017},
		{"No Year Here", "No Year Here", 0},
		{"Trailing Space (2001) ", "Trailing Space", 2001},
		{"(500) Days of Summer", "(500) Days of Summer", 0},
	}
	for _, tc := range cases {
		title, year := ParseFolderName(tc.name)
		if title != tc.title {
			t.Fatalf("%q: expected title %q, got %q", tc.name, tc.title, title)
		}
		if tc.year == 0 {
			if year != nil {
				t.Fatalf("%q: expected no year, got %d", tc.name, *year)
			}
			continue
		}
		if year == nil || *year != tc.year {
			t.Fatalf("%q: expected year %d, got %v", tc.name, tc.year, year)
		}
	}
}

func TestIsPrincipalVideo(t *testing.T) {
	accepted := []string{"heat.mkv", "HEAT.MKV", "movie.mp4", "feature.m2ts"}
	for _, name := range accepted {
		if !IsPrincipalVideo(name) {
			t.Fatalf("expected %q to be a principal video", name)
		}
	}
	rejected := []string{
		"sample.mkv",
		"heat-sample.mkv",
		"heat.trailer.mkv",
		"poster.jpg",
		"notes.txt",
		".hidden.mkv",
		".fuse_hidden000123",
		"movie.mkv.part",
		"movie.mkv.partial",
		"movie.mkv.!qb",
		"movie.mkv.tmp",
	}
	for _, name := range rejected {
		if IsPrincipalVideo(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestWalkYieldsMovieFolders(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "Heat (1995)", "heat.mkv"))
	writeFile(t, filepath.Join(root, "Heat (1995)", "sample.mkv"))
	writeFile(t, filepath.Join(root, "Heat (1995)", "Extras", "bonus.mkv"))
	writeFile(t, filepath.Join(root, "Alien (1979)", "alien part1.mkv"))
	writeFile(t, filepath.Join(root, "Alien (1979)", "alien part2.mkv"))
	writeFile(t, filepath.Join(root, "Artwork Only", "poster.jpg"))
	writeFile(t, filepath.Join(root, ".stash", "hidden.mkv"))
	writeFile(t, filepath.Join(root, "loose-file.mkv"))

	seq, err := Walk(root)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	folders := map[string]Folder{}
	for folder := range seq {
		folders[folder.Name] = folder
	}

	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d: %v", len(folders), folders)
	}

	heat, ok := folders["Heat (1995)"]
	if !ok {
		t.Fatal("expected Heat (1995) to be yielded")
	}
	if heat.Title != "Heat" || heat.Year == nil || *heat.Year != 1995 {
		t.Fatalf("unexpected parse of Heat: %+v", heat)
	}
	if len(heat.VideoFiles) != 1 || filepath.Base(heat.VideoFiles[0]) != "heat.mkv" {
		t.Fatalf("expected the sample and extras to be skipped, got %v", heat.VideoFiles)
	}

	alien := folders["Alien (1979)"]
	if len(alien.VideoFiles) != 2 {
		t.Fatalf("expected 2 files for Alien, got %v", alien.VideoFiles)
	}
}

func TestWalkStopsWhenConsumerBreaks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A (2000)", "a.mkv"))
	writeFile(t, filepath.Join(root, "B (2001)", "b.mkv"))

	seq, err := Walk(root)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected a single yield before break, got %d", count)
	}
}

func TestWalkFailsOnUnreadableRoot(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
