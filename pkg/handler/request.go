package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/render"
)

// PlotRequest is the query of GET /plot applied over the server defaults.
type PlotRequest struct {
	Order []string
	Style config.Style
}

// ParseOrder splits a comma separated id list, dropping blanks.
func ParseOrder(raw string) []string {
	var order []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			order = append(order, id)
		}
	}
	return order
}

// parsePlotRequest reads order, format, colormap, identity_min and
// min_cds_length. Missing parameters keep the defaults.
func parsePlotRequest(q url.Values, defaults config.Style) (PlotRequest, error) {
	req := PlotRequest{Order: ParseOrder(q.Get("order")), Style: defaults}

	if v := q.Get("format"); v != "" {
		format, err := render.NormalizeFormat(v)
		if err != nil {
			return req, err
		}
		req.Style.Format = format
	}
	if v := q.Get("colormap"); v != "" {
		req.Style.Colormap = v
	}
	if v := q.Get("identity_min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 100 {
			return req, fmt.Errorf("identity_min must be a number in [0, 100): %q", v)
		}
		req.Style.IdentityMin = f
	}
	if v := q.Get("min_cds_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("min_cds_length must be a non-negative integer: %q", v)
		}
		req.Style.MinCDSLength = n
	}
	return req, nil
}
