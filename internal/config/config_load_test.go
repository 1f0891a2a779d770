package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	original := os.Args
	os.Args = args
	resetFlags()
	t.Cleanup(func() {
		os.Args = original
		resetFlags()
	})
}

func TestLoadFromFlags_Flags(t *testing.T) {
	dir := t.TempDir()
	withArgs(t, "mdph-pdf",
		"--mode=server", "--port=9090",
		"--datadir="+filepath.Join(dir, "public"),
		"--outputdir="+filepath.Join(dir, "out"),
		"--brandfonts=fonts/A.ttf,fonts/B.ttf",
		"--loglevel=debug",
	)

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" || cfg.Port != 9090 {
		t.Errorf("LoadFromFlags() Mode/Port = %s/%d, want server/9090", cfg.Mode, cfg.Port)
	}
	if cfg.DataDir != filepath.Join(dir, "public") {
		t.Errorf("LoadFromFlags() DataDir = %s", cfg.DataDir)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		t.Errorf("Expected output directory to exist: %v", err)
	}
	if len(cfg.BrandFonts) != 2 || cfg.BrandFonts[1] != "fonts/B.ttf" {
		t.Errorf("LoadFromFlags() BrandFonts = %v", cfg.BrandFonts)
	}
	if !cfg.IsDebug() {
		t.Errorf("LoadFromFlags() LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestLoadFromFlags_Environment(t *testing.T) {
	dir := t.TempDir()
	withArgs(t, "mdph-pdf")
	t.Setenv("MDPH_DATADIR", dir)
	t.Setenv("MDPH_OUTPUTDIR", filepath.Join(dir, "out"))
	t.Setenv("MDPH_LIFEPROJECTPDF", "templates/pdv.pdf")
	t.Setenv("MDPH_BRANDFONTS", "fonts/Brand.ttf")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LifeProjectPDF != "templates/pdv.pdf" {
		t.Errorf("LoadFromFlags() LifeProjectPDF = %s", cfg.LifeProjectPDF)
	}
	if got := cfg.Resolve(cfg.LifeProjectPDF); got != filepath.Join(dir, "templates/pdv.pdf") {
		t.Errorf("Resolve() = %s", got)
	}
	if len(cfg.BrandFonts) != 1 || cfg.BrandFonts[0] != "fonts/Brand.ttf" {
		t.Errorf("LoadFromFlags() BrandFonts = %v", cfg.BrandFonts)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	withArgs(t, "mdph-pdf", "--mode=http", "--datadir="+t.TempDir())

	if _, err := LoadFromFlags(); err == nil {
		t.Error("LoadFromFlags() expected error for invalid mode")
	}
}

func TestLoadFromFlags_Version(t *testing.T) {
	withArgs(t, "mdph-pdf", "--version")

	_, err := LoadFromFlags()
	if err == nil || err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want version requested", err)
	}
}
