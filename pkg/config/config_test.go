package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefaultValidates(t *testing.T) {
	o := Default()
	if err := o.Validate(); err != nil {
		t.Fatalf("Default options should validate: %v", err)
	}
	if o.Filter.IdentityThreshold != 80 || o.Filter.MinAlignmentLength != 100 {
		t.Errorf("Unexpected filter defaults %+v", o.Filter)
	}
	if o.Layout.Gap != 4.5 || o.Layout.Margin != 1000 {
		t.Errorf("Unexpected layout defaults %+v", o.Layout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"identity above 100", func(o *Options) { o.Filter.IdentityThreshold = 101 }},
		{"negative min length", func(o *Options) { o.Filter.MinAlignmentLength = -1 }},
		{"zero gap", func(o *Options) { o.Layout.Gap = 0 }},
		{"identity min 100", func(o *Options) { o.Style.IdentityMin = 100 }},
		{"zero width", func(o *Options) { o.Style.FigWidth = 0 }},
		{"negative cds length", func(o *Options) { o.Style.MinCDSLength = -5 }},
		{"zero font", func(o *Options) { o.Style.FontSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Default()
			tt.mutate(&o)
			if err := o.Validate(); !errors.Is(err, ErrInvalidOption) {
				t.Errorf("Expected ErrInvalidOption, got %v", err)
			}
		})
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName(EnvPrefix, "min-cds-length"); got != "PHAGEPLOT_MIN_CDS_LENGTH" {
		t.Errorf("EnvName = %q", got)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phageplot.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "style:\n  colormap: plasma\n  fig_width: 12\nlayout:\n  gap: 6\n")

	o := Default()
	if err := LoadFile(path, &o); err != nil {
		t.Fatal(err)
	}
	if o.Style.Colormap != "plasma" || o.Style.FigWidth != 12 || o.Layout.Gap != 6 {
		t.Errorf("File values not applied: %+v %+v", o.Style, o.Layout)
	}
	if o.Style.FigHeight != 14 || o.Filter.IdentityThreshold != 80 {
		t.Error("Keys missing from the file should keep their defaults")
	}

	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &o); err == nil {
		t.Error("Expected an error for a missing file")
	}
	bad := writeConfig(t, "style: [unclosed\n")
	if err := LoadFile(bad, &o); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}

func TestOverlayPrecedence(t *testing.T) {
	path := writeConfig(t, "filter:\n  identity_thresh: 70\n  min_len: 200\nstyle:\n  colormap: plasma\n  font_size: 12\n")
	t.Setenv("PHAGEPLOT_MIN_LEN", "300")
	t.Setenv("PHAGEPLOT_COLORMAP", "bluered")

	o := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindFilterFlags(fs)
	o.BindStyleFlags(fs)
	if err := fs.Parse([]string{"--colormap", "kindlmann"}); err != nil {
		t.Fatal(err)
	}

	if err := Overlay(&o, fs, path); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file only", o.Filter.IdentityThreshold, 70.0},
		{"env beats file", o.Filter.MinAlignmentLength, 300},
		{"flag beats env and file", o.Style.Colormap, "kindlmann"},
		{"file beats default", o.Style.FontSize, 12.0},
		{"default kept", o.Style.Format, "svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestOverlayRejectsBadEnv(t *testing.T) {
	t.Setenv("PHAGEPLOT_MIN_LEN", "many")

	o := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindFilterFlags(fs)
	if err := Overlay(&o, fs, ""); err == nil {
		t.Fatal("Expected an error for a non-numeric environment value")
	}
}

func TestOverlayValidates(t *testing.T) {
	o := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindLayoutFlags(fs)
	if err := fs.Parse([]string{"--gap=-1"}); err != nil {
		t.Fatal(err)
	}
	if err := Overlay(&o, fs, ""); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
}

func TestOverlayKeepsListFlags(t *testing.T) {
	t.Setenv("PHAGEPLOT_ORDER", "phiC")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"comma separated", []string{"--order", "phiB,phiA"}, []string{"phiB", "phiA"}},
		{"repeated", []string{"--order", "phiB", "--order", "phiA"}, []string{"phiB", "phiA"}},
		{"env when unset", nil, []string{"phiC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Default()
			var order []string
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			fs.StringSliceVar(&order, "order", nil, "genome order")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if err := Overlay(&o, fs, ""); err != nil {
				t.Fatalf("Overlay failed: %v", err)
			}
			if len(order) != len(tt.want) {
				t.Fatalf("order = %q, want %q", order, tt.want)
			}
			for i := range order {
				if order[i] != tt.want[i] {
					t.Errorf("order = %q, want %q", order, tt.want)
				}
			}
		})
	}
}
