package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLocateImageRecursiveBasenameMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "batch_02", "nested", "a.jpg"))

	got, ok := LocateImage(root, "https://cdn.example.com/photos/a.jpg?w=640")
	if got != "" && !ok {
		t.Fatal("inconsistent return")
	}

	// The query string is part of the basename, so this reference does
	// not resolve; the plain filename does.
	if ok {
		t.Fatalf("reference with query string resolved to %q; basename should not match", got)
	}

	got, ok = LocateImage(root, "photos/a.jpg")
	if !ok {
		t.Fatal("a.jpg not found under root")
	}
	if want := filepath.Join(root, "batch_02", "nested", "a.jpg"); got != want {
		t.Errorf("LocateImage = %q; want %q", got, want)
	}
}

func TestLocateImageDuplicateBasenameIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "dup.jpg"))
	writeFile(t, filepath.Join(root, "a", "dup.jpg"))

	got, ok := LocateImage(root, "dup.jpg")
	if !ok {
		t.Fatal("dup.jpg not found")
	}
	if want := filepath.Join(root, "a", "dup.jpg"); got != want {
		t.Errorf("LocateImage = %q; want lexicographically first %q", got, want)
	}
}

func TestLocateImageMissing(t *testing.T) {
	root := t.TempDir()
	if _, ok := LocateImage(root, "nope.jpg"); ok {
		t.Error("missing image should not resolve")
	}
}

func TestCountImages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x", "a.jpg"))
	writeFile(t, filepath.Join(root, "b.png"))

	got := CountImages(root, []string{"a.jpg", "b.png", "c.webp"})
	if got != 2 {
		t.Errorf("CountImages = %d; want 2", got)
	}
}
