package blast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
)

// createFakeTool writes a shell script named name into dir that appends its
// arguments to calls.log and then runs body.
func createFakeTool(t *testing.T, dir, name, body string) {
	t.Helper()
	content := "#!/usr/bin/env bash\n" +
		"echo \"" + name + " $*\" >> \"" + filepath.Join(dir, "calls.log") + "\"\n" +
		body + "\n"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
}

// prependPath puts dir first on PATH for the duration of the test.
func prependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// argAfter is a bash snippet that stores the value following flag in var.
func argAfter(flag, v string) string {
	return `while [ $# -gt 0 ]; do if [ "$1" = "` + flag + `" ]; then ` + v + `="$2"; fi; shift; done`
}

func setup(t *testing.T, genomes ...string) (*Runner, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are bash scripts")
	}

	bin := t.TempDir()
	createFakeTool(t, bin, "makeblastdb", argAfter("-out", "OUT")+"\ntouch \"$OUT.nin\"")
	createFakeTool(t, bin, "blastn", argAfter("-out", "OUT")+"\nprintf 'A\\tB\\t99.0\\t500\\t0\\t0\\t1\\t500\\t1\\t500\\t0.0\\t900\\n' > \"$OUT\"")
	prependPath(t, bin)

	fastaDir := t.TempDir()
	for _, g := range genomes {
		if err := os.WriteFile(filepath.Join(fastaDir, g+".fasta"), []byte(">"+g+"\nACGT\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	seqdb, err := db.NewSequenceDB(fastaDir)
	if err != nil {
		t.Fatal(err)
	}

	work := t.TempDir()
	opts := config.Default().Blast
	opts.OutputDir = filepath.Join(work, "blast_results")
	opts.DBDir = filepath.Join(work, "blastdb")
	return NewRunner(seqdb, opts), bin
}

func readCalls(t *testing.T, bin string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(bin, "calls.log"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestPairs(t *testing.T) {
	got := Pairs([]string{"A", "B", "C"})
	want := []Pair{{"A", "B"}, {"A", "C"}, {"B", "C"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Pairs() = %v, want %v", got, want)
	}
	if got := Pairs([]string{"A"}); len(got) != 0 {
		t.Errorf("single genome gave pairs %v", got)
	}
}

func TestRunAllPairs(t *testing.T) {
	runner, bin := setup(t, "phiC", "phiA", "phiB")

	sum, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.DatabasesBuilt != 3 || sum.SearchesRun != 3 {
		t.Errorf("summary = %+v", sum)
	}

	for _, name := range []string{"phiA_vs_phiB.txt", "phiA_vs_phiC.txt", "phiB_vs_phiC.txt"} {
		if _, err := os.Stat(filepath.Join(runner.Opts.OutputDir, name)); err != nil {
			t.Errorf("missing result %s: %v", name, err)
		}
	}

	calls := readCalls(t, bin)
	if len(calls) != 6 {
		t.Fatalf("got %d tool calls: %v", len(calls), calls)
	}
	if !strings.Contains(calls[3], "-outfmt 6 -evalue 1e-5") {
		t.Errorf("blastn call = %q", calls[3])
	}
	if !strings.Contains(calls[3], filepath.Join(runner.Opts.DBDir, "phiB")) {
		t.Errorf("first search should hit phiB's database: %q", calls[3])
	}
}

func TestRunIsResumable(t *testing.T) {
	runner, bin := setup(t, "phiA", "phiB")

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	os.Remove(filepath.Join(bin, "calls.log"))

	sum, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.DatabasesReused != 2 || sum.SearchesReused != 1 || sum.SearchesRun != 0 {
		t.Errorf("second run summary = %+v", sum)
	}
	if calls := readCalls(t, bin); len(calls) != 0 {
		t.Errorf("second run invoked tools: %v", calls)
	}
}

func TestRunNoSequences(t *testing.T) {
	runner, _ := setup(t)
	if _, err := runner.Run(context.Background()); !errors.Is(err, ErrNoSequences) {
		t.Errorf("error = %v, want ErrNoSequences", err)
	}
}

func TestRunToolFailure(t *testing.T) {
	runner, bin := setup(t, "phiA", "phiB")
	createFakeTool(t, bin, "blastn", argAfter("-out", "OUT")+"\necho partial > \"$OUT\"\necho 'BLAST Database error' >&2\nexit 2")

	_, err := runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "BLAST Database error") {
		t.Fatalf("error = %v, want tool stderr", err)
	}
	if _, err := os.Stat(runner.OutputPath(Pair{"phiA", "phiB"})); !os.IsNotExist(err) {
		t.Errorf("partial output left behind: %v", err)
	}
}
