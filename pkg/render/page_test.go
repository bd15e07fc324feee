package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coafione/phage-genome-plotter/pkg/model"
)

func TestRenderIndexPage(t *testing.T) {
	ds := buildDataset(t,
		&model.GenomeRecord{ID: "phiA", Length: 1000, CDS: []model.CDSFeature{{Start: 1, End: 90, Strand: model.Forward}}},
		&model.GenomeRecord{ID: "phi<B>", Length: 1200},
	)

	var buf bytes.Buffer
	err := RenderIndexPage(&buf, IndexPageData{
		Title:        "Comparative Genomics",
		Source:       "dataset.json",
		Genomes:      Summarize(ds),
		Order:        ds.IDs(),
		Format:       "svg",
		Colormap:     "viridis",
		IdentityMin:  80,
		MinCDSLength: 50,
		Formats:      Formats,
		Colormaps:    Colormaps(),
	})
	if err != nil {
		t.Fatalf("RenderIndexPage() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<td>phiA</td>", "phi&lt;B&gt;", `value="viridis" selected`, "/plot?format=svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("page is missing %q", want)
		}
	}
}

func TestSummarize(t *testing.T) {
	ds := buildDataset(t,
		&model.GenomeRecord{ID: "B", Length: 5, Links: []model.SimilarityLink{model.NewLink("A", 0, 1, 0, 1, 99)}},
		&model.GenomeRecord{ID: "A", Length: 7},
	)
	rows := Summarize(ds)
	if len(rows) != 2 || rows[0] != (GenomeRow{ID: "B", Length: 5, Links: 1}) || rows[1].ID != "A" {
		t.Errorf("Summarize() = %+v", rows)
	}
}
