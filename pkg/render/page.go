package render

import (
	"html/template"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

var indexPageTemplate *template.Template

// GenomeRow is one line of the overview table.
type GenomeRow struct {
	ID     string
	Length int
	CDS    int
	Links  int
}

// IndexPageData is what the overview page shows: the dataset summary and the
// current plot parameters.
type IndexPageData struct {
	Title        string
	Source       string
	Genomes      []GenomeRow
	Order        []string
	Format       string
	Colormap     string
	IdentityMin  float64
	MinCDSLength int
	Formats      []string
	Colormaps    []string
}

// Summarize builds the overview rows in dataset order.
func Summarize(ds *model.GenomeDataset) []GenomeRow {
	rows := make([]GenomeRow, 0, ds.Len())
	for _, rec := range ds.Records() {
		rows = append(rows, GenomeRow{ID: rec.ID, Length: rec.Length, CDS: len(rec.CDS), Links: len(rec.Links)})
	}
	return rows
}

// init initializes the templates used for rendering the HTML page.
func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>{{.Title}}</title>
		<style>
		table.genomes { border-collapse: collapse; }
		table.genomes td, table.genomes th { border: 1px solid #ccc; padding: 2px 8px; }
		td.num { text-align: right; }
		img.figure { max-width: 100%; border: 1px solid #eee; }
		</style>
	</head>
	<body>
		<header class="app-header">
			<h1 class="app-name">{{.Title}}</h1>
			<p class="app-description">Dataset: {{.Source}}</p>
		</header>
		{{template "plotForm" .}}
		{{template "genomeTable" .}}
		<div>
			<img class="figure" alt="comparative genome plot" src="{{template "plotURL" .}}">
		</div>
	</body>
	</html>`

	plotURL := `{{define "plotURL"}}/plot?format=svg&colormap={{.Colormap}}&identity_min={{.IdentityMin}}&min_cds_length={{.MinCDSLength}}&order={{join .Order ","}}{{end}}`

	plotForm := `
	{{define "plotForm"}}
	<form id="plotForm" action="/plot" method="GET">
		<div class="form-row">
			<label>Order: <input type="text" name="order" size="60" value="{{join .Order ","}}"></label>
		</div>
		<div class="form-row">
			<label>Format:
			<select name="format">
				{{range .Formats}}<option value="{{.}}" {{if eq . $.Format}}selected{{end}}>{{.}}</option>{{end}}
			</select></label>
			<label>Colormap:
			<select name="colormap">
				{{range .Colormaps}}<option value="{{.}}" {{if eq . $.Colormap}}selected{{end}}>{{.}}</option>{{end}}
			</select></label>
			<label>Identity min: <input type="number" name="identity_min" min="0" max="99" step="0.5" value="{{.IdentityMin}}"></label>
			<label>Min CDS length: <input type="number" name="min_cds_length" min="0" value="{{.MinCDSLength}}"></label>
			<input type="submit" value="Download">
		</div>
	</form>
	{{end}}`

	genomeTable := `
	{{define "genomeTable"}}
	<table class="genomes">
		<tr><th>#</th><th>Genome</th><th>Length (bp)</th><th>CDS</th><th>Links</th></tr>
		{{range $i, $g := .Genomes}}
		<tr>
			<td class="num">{{add $i 1}}</td>
			<td>{{$g.ID}}</td>
			<td class="num">{{$g.Length}}</td>
			<td class="num">{{$g.CDS}}</td>
			<td class="num">{{$g.Links}}</td>
		</tr>
		{{else}}
		<tr><td colspan="5">No genomes in dataset</td></tr>
		{{end}}
	</table>
	{{end}}`

	funcMap := template.FuncMap{
		"add":  func(a, b int) int { return a + b },
		"join": strings.Join,
	}

	indexPageTemplate = template.New("index").Funcs(funcMap)
	indexPageTemplate = template.Must(indexPageTemplate.Parse(mainTmpl))
	indexPageTemplate = template.Must(indexPageTemplate.Parse(plotURL))
	indexPageTemplate = template.Must(indexPageTemplate.Parse(plotForm))
	indexPageTemplate = template.Must(indexPageTemplate.Parse(genomeTable))
}

// RenderIndexPage writes the HTML overview of the loaded dataset.
func RenderIndexPage(w io.Writer, data IndexPageData) error {
	logger.Debug("Rendering index page", zap.Int("genomes", len(data.Genomes)))
	return indexPageTemplate.Execute(w, data)
}
