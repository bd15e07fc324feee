// Package config carries every tunable of the pipeline in one structure so
// that ingestion, layout and rendering share the same defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to upper-cased flag names to form environment keys,
// e.g. --min-cds-length is read from PHAGEPLOT_MIN_CDS_LENGTH.
const EnvPrefix = "PHAGEPLOT"

// Filter controls which alignment records become similarity links.
type Filter struct {
	IdentityThreshold  float64 `yaml:"identity_thresh"` // percent, inclusive
	MinAlignmentLength int     `yaml:"min_len"`         // bp, inclusive
}

// Layout controls track placement.
type Layout struct {
	Gap      float64 `yaml:"gap"`      // vertical distance between tracks
	Margin   float64 `yaml:"margin"`   // added to the longest genome on the x axis
	Headroom float64 `yaml:"headroom"` // space above track 0
}

// Style controls the rendered figure.
type Style struct {
	Title          string  `yaml:"title"`
	Format         string  `yaml:"format"`
	Colormap       string  `yaml:"colormap"`
	FigWidth       float64 `yaml:"fig_width"`  // inches
	FigHeight      float64 `yaml:"fig_height"` // inches
	CDSHeight      float64 `yaml:"cds_height"`
	MinCDSLength   int     `yaml:"min_cds_length"`
	IdentityMin    float64 `yaml:"identity_min"`
	BarThickness   float64 `yaml:"bar_thickness"` // points
	FontSize       float64 `yaml:"font_size"`     // points
	LinkHalfHeight float64 `yaml:"link_half_height"`
	LabelOffset    float64 `yaml:"label_offset"` // bp past the end of a bar
	LinkAlpha      float64 `yaml:"link_alpha"`
	CDSAlpha       float64 `yaml:"cds_alpha"`
	ForwardColor   string  `yaml:"forward_color"`
	ReverseColor   string  `yaml:"reverse_color"`
	BarColor       string  `yaml:"bar_color"`
}

// Blast controls the external alignment orchestration.
type Blast struct {
	OutputDir   string `yaml:"output_dir"`
	DBDir       string `yaml:"db_dir"`
	EValue      string `yaml:"evalue"`
	Blastn      string `yaml:"blastn"`
	Makeblastdb string `yaml:"makeblastdb"`
}

// Server controls the HTTP preview server.
type Server struct {
	Addr string `yaml:"addr"`
}

// Options is the single configuration structure passed through the pipeline.
type Options struct {
	Filter Filter `yaml:"filter"`
	Layout Layout `yaml:"layout"`
	Style  Style  `yaml:"style"`
	Blast  Blast  `yaml:"blast"`
	Server Server `yaml:"server"`
}

// Default returns the stock configuration.
func Default() Options {
	return Options{
		Filter: Filter{
			IdentityThreshold:  80,
			MinAlignmentLength: 100,
		},
		Layout: Layout{
			Gap:      4.5,
			Margin:   1000,
			Headroom: 2,
		},
		Style: Style{
			Title:          "Comparative Genomics",
			Format:         "svg",
			Colormap:       "viridis",
			FigWidth:       18,
			FigHeight:      14,
			CDSHeight:      1.6,
			MinCDSLength:   50,
			IdentityMin:    80,
			BarThickness:   6,
			FontSize:       10,
			LinkHalfHeight: 0.4,
			LabelOffset:    700,
			LinkAlpha:      0.5,
			CDSAlpha:       0.85,
			ForwardColor:   "#008000",
			ReverseColor:   "#FFA500",
			BarColor:       "#808080",
		},
		Blast: Blast{
			OutputDir:   "blast_results",
			DBDir:       "blastdb",
			EValue:      "1e-5",
			Blastn:      "blastn",
			Makeblastdb: "makeblastdb",
		},
		Server: Server{
			Addr: "0.0.0.0:8080",
		},
	}
}

var ErrInvalidOption = errors.New("invalid option")

// Validate reports the first option that cannot produce a sensible figure.
func (o *Options) Validate() error {
	switch {
	case o.Filter.IdentityThreshold < 0 || o.Filter.IdentityThreshold > 100:
		return fmt.Errorf("%w: identity threshold %g outside [0, 100]", ErrInvalidOption, o.Filter.IdentityThreshold)
	case o.Filter.MinAlignmentLength < 0:
		return fmt.Errorf("%w: negative minimum alignment length", ErrInvalidOption)
	case o.Layout.Gap <= 0:
		return fmt.Errorf("%w: gap must be positive", ErrInvalidOption)
	case o.Layout.Margin < 0:
		return fmt.Errorf("%w: negative margin", ErrInvalidOption)
	case o.Style.IdentityMin < 0 || o.Style.IdentityMin >= 100:
		return fmt.Errorf("%w: identity min %g outside [0, 100)", ErrInvalidOption, o.Style.IdentityMin)
	case o.Style.FigWidth <= 0 || o.Style.FigHeight <= 0:
		return fmt.Errorf("%w: figure size must be positive", ErrInvalidOption)
	case o.Style.MinCDSLength < 0:
		return fmt.Errorf("%w: negative minimum CDS length", ErrInvalidOption)
	case o.Style.FontSize <= 0:
		return fmt.Errorf("%w: font size must be positive", ErrInvalidOption)
	}
	return nil
}

// LoadFile merges a YAML file into o. Keys missing from the file keep their
// current values.
func LoadFile(path string, o *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// EnvName returns the environment key for a flag name.
func EnvName(prefix, flag string) string {
	return prefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// Overlay applies, in increasing precedence, the YAML file, the environment
// and the flags the user set explicitly. fs must be bound to fields of o,
// which is what the Bind* helpers do.
func Overlay(o *Options, fs *pflag.FlagSet, file string) error {
	explicit := make(map[string]string)
	lists := make(map[string][]string)
	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		explicit[f.Name] = f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			lists[f.Name] = append([]string(nil), sv.GetSlice()...)
		}
	})

	if file != "" {
		if err := LoadFile(file, o); err != nil {
			return err
		}
	}

	if err := ApplyEnv(fs, EnvPrefix, explicit); err != nil {
		return err
	}

	for name, v := range explicit {
		// Set on a list flag appends, so lists are replaced wholesale.
		if items, ok := lists[name]; ok {
			if err := fs.Lookup(name).Value.(pflag.SliceValue).Replace(items); err != nil {
				return fmt.Errorf("flag --%s: %w", name, err)
			}
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return o.Validate()
}

// ApplyEnv sets every flag of fs not in skip from its <prefix>_<FLAG>
// environment variable, when present.
func ApplyEnv(fs *pflag.FlagSet, prefix string, skip map[string]string) error {
	var envErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if envErr != nil {
			return
		}
		if _, ok := skip[f.Name]; ok {
			return
		}
		key := EnvName(prefix, f.Name)
		if v, ok := os.LookupEnv(key); ok {
			if err := f.Value.Set(v); err != nil {
				envErr = fmt.Errorf("%s: %w", key, err)
			}
		}
	})
	return envErr
}

// BindFilterFlags registers the link filter flags.
func (o *Options) BindFilterFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&o.Filter.IdentityThreshold, "identity-thresh", o.Filter.IdentityThreshold, "minimum percent identity for a link to be kept")
	fs.IntVar(&o.Filter.MinAlignmentLength, "min-len", o.Filter.MinAlignmentLength, "minimum alignment length (bp) for a link to be kept")
}

// BindLayoutFlags registers the layout flags.
func (o *Options) BindLayoutFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&o.Layout.Gap, "gap", o.Layout.Gap, "vertical gap between genome tracks")
	fs.Float64Var(&o.Layout.Margin, "margin", o.Layout.Margin, "extra x-axis space after the longest genome (bp)")
}

// BindStyleFlags registers the figure flags.
func (o *Options) BindStyleFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Style.Format, "format", o.Style.Format, "output format: svg, png, pdf, eps, jpg, tif")
	fs.StringVar(&o.Style.Colormap, "colormap", o.Style.Colormap, "colormap for similarity links")
	fs.StringVar(&o.Style.Title, "title", o.Style.Title, "figure title")
	fs.Float64Var(&o.Style.FigWidth, "fig-width", o.Style.FigWidth, "figure width in inches")
	fs.Float64Var(&o.Style.FigHeight, "fig-height", o.Style.FigHeight, "figure height in inches")
	fs.Float64Var(&o.Style.CDSHeight, "cds-height", o.Style.CDSHeight, "height of CDS boxes in plot units")
	fs.IntVar(&o.Style.MinCDSLength, "min-cds-length", o.Style.MinCDSLength, "shortest CDS (bp) that is drawn")
	fs.Float64Var(&o.Style.IdentityMin, "identity-min", o.Style.IdentityMin, "identity mapped to the lowest color")
	fs.Float64Var(&o.Style.BarThickness, "bar-thickness", o.Style.BarThickness, "thickness of genome bars in points")
	fs.Float64Var(&o.Style.FontSize, "font-size", o.Style.FontSize, "font size for labels in points")
}

// BindBlastFlags registers the alignment orchestration flags.
func (o *Options) BindBlastFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Blast.OutputDir, "output-dir", o.Blast.OutputDir, "directory for pairwise BLAST results")
	fs.StringVar(&o.Blast.DBDir, "db-dir", o.Blast.DBDir, "directory for BLAST databases")
	fs.StringVar(&o.Blast.EValue, "evalue", o.Blast.EValue, "blastn e-value cutoff")
}

// BindServerFlags registers the preview server flags.
func (o *Options) BindServerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Server.Addr, "addr", o.Server.Addr, "listen address")
}
