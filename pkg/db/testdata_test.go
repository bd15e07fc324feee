package db

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates name -> content files under a fresh temp dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

const phiAGenBank = `LOCUS       phiA                     60 bp    DNA     linear   PHG 01-JAN-2024
DEFINITION  Test phage A.
FEATURES             Location/Qualifiers
     source          1..60
                     /organism="Test phage A"
     gene            1..30
                     /gene="terS"
     CDS             1..30
                     /gene="terS"
                     /product="terminase small
                     subunit"
                     /translation="MKKLLL
                     VVV"
     CDS             complement(31..60)
                     /locus_tag="PHA_002"
     misc_feature    20^21
                     /note="junction"
ORIGIN
        1 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
//
`

const phiBGenBank = `LOCUS       phiB                     40 bp    DNA     linear   PHG 01-JAN-2024
FEATURES             Location/Qualifiers
     CDS             join(1..10,21..40)
                     /product="tail fiber"
ORIGIN
        1 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
//
`
