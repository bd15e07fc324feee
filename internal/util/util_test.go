package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStem(t *testing.T) {
	tests := map[string]string{
		"dir/A.fasta":       "A",
		"phage_1.gbk":       "phage_1",
		"T4.v2.fna":         "T4.v2",
		"noext":             "noext",
		"/abs/x/B_vs_C.txt": "B_vs_C",
	}
	for in, want := range tests {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !DirExists(dir) || DirExists(file) || DirExists(filepath.Join(dir, "missing")) {
		t.Error("DirExists gave a wrong answer")
	}
	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists gave a wrong answer")
	}
	if !HasExt("a.gbk", []string{".gb", ".gbk"}) || HasExt("a.txt", []string{".gbk"}) {
		t.Error("HasExt gave a wrong answer")
	}
}
