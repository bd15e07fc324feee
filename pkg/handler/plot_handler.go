package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/blob"
	"github.com/coafione/phage-genome-plotter/pkg/layout"
	"github.com/coafione/phage-genome-plotter/pkg/middle"
	"github.com/coafione/phage-genome-plotter/pkg/render"
)

// isClientError reports whether err comes from a bad query rather than from
// the renderer itself.
func isClientError(err error) bool {
	return errors.Is(err, layout.ErrUnknownGenome) ||
		errors.Is(err, layout.ErrDuplicateGenome) ||
		errors.Is(err, render.ErrUnknownColormap) ||
		errors.Is(err, render.ErrUnknownFormat)
}

// MainPage shows the dataset overview and an embedded figure.
func (pctx *PlotContext) MainPage(w http.ResponseWriter, r *http.Request) {
	style := pctx.Options.Style
	data := render.IndexPageData{
		Title:        style.Title,
		Source:       pctx.Source,
		Genomes:      render.Summarize(pctx.Dataset),
		Order:        pctx.Dataset.IDs(),
		Format:       style.Format,
		Colormap:     style.Colormap,
		IdentityMin:  style.IdentityMin,
		MinCDSLength: style.MinCDSLength,
		Formats:      render.Formats,
		Colormaps:    render.Colormaps(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderIndexPage(w, data); err != nil {
		logger.Error("Failed to render index page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// PlotHandler renders the figure for the requested order and style.
func (pctx *PlotContext) PlotHandler(w http.ResponseWriter, r *http.Request) {
	log := middle.LoggerFrom(r.Context(), logger.L())

	req, err := parsePlotRequest(r.URL.Query(), pctx.Options.Style)
	if err != nil {
		pctx.countRender(req.Style.Format, "bad_request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	lay, err := layout.Compute(pctx.Dataset, req.Order, pctx.Options.Layout)
	if err != nil {
		pctx.countRender(req.Style.Format, "bad_request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scene, err := render.BuildScene(pctx.Dataset, lay, req.Style)
	if err == nil && pctx.Metrics != nil {
		pctx.Metrics.Ribbons.Observe(float64(len(scene.Ribbons)))
	}

	var buf bytes.Buffer
	if err == nil {
		err = render.Draw(&buf, scene, req.Style)
	}
	if err != nil {
		if isClientError(err) {
			pctx.countRender(req.Style.Format, "bad_request")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pctx.countRender(req.Style.Format, "error")
		log.Error("Failed to render figure", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pctx.countRender(req.Style.Format, "ok")
	log.Info("Rendered figure",
		zap.Strings("order", lay.IDs()),
		zap.String("format", req.Style.Format),
		zap.Int("ribbons", len(scene.Ribbons)),
		zap.Duration("elapsed", time.Since(start)))

	w.Header().Set("Content-Type", blob.ContentType("figure."+req.Style.Format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (pctx *PlotContext) countRender(format, outcome string) {
	if pctx.Metrics == nil {
		return
	}
	pctx.Metrics.Renders.WithLabelValues(format, outcome).Inc()
}
