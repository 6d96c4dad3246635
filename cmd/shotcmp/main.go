package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sokinpui/shotcmp/internal/comparator"
	"github.com/sokinpui/shotcmp/internal/logger"
	"github.com/sokinpui/shotcmp/internal/runner"
)

func main() {
	cfg, logPath := parseFlags()

	logFile, err := logger.Init(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err = validateConfig(cfg); err != nil {
		log.Printf("Configuration error: %v", err)
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	summary, err := runner.Run(cfg)
	if err != nil {
		log.Printf("Application error: %v", err)
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
	if summary.Failed() {
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}
}

// parseFlags defines and parses command-line flags, returning them
// in a Config struct together with the log file path.
func parseFlags() (*runner.Config, string) {
	cfg := &runner.Config{}
	var logPath string

	pflag.StringVarP(&cfg.ReferencePath, "reference", "r", "", "Path to the reference image.")
	pflag.StringVarP(&cfg.CandidatePath, "candidate", "c", "", "Path to the screenshot to verify.")
	pflag.StringVarP(&cfg.ManifestPath, "manifest", "m", "", "YAML manifest listing references and checks.")
	pflag.StringVarP(&cfg.OutputDirectory, "output", "o", "", "Directory to save error artifacts. Nothing is written when empty.")
	pflag.Float64VarP(&cfg.Tolerance, "tolerance", "t", comparator.DefaultTolerance, "Normalized block distance above which a block differs, in [0, 1].")
	pflag.BoolVar(&cfg.CursorDetection, "cursor", false, "Ignore a blinking text caret that is the only difference.")
	pflag.StringVar(&cfg.Metric, "metric", "rgb", "Block distance metric (rgb, ciede2000).")
	pflag.IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of checks to verify in parallel.")
	pflag.StringVar(&cfg.ImageType, "type", "", "Type of the screenshot images (e.g., jpeg, png, bmp, webp). If not specified, it will be inferred.")
	pflag.StringVar(&cfg.Qualifiers.Platform, "platform", "", "Platform qualifier used to pick references.")
	pflag.StringVar(&cfg.Qualifiers.Browser, "browser", "", "Browser qualifier used to pick references.")
	pflag.IntVar(&cfg.Qualifiers.Version, "browser-version", 0, "Browser major version. Older versions are used as fallback.")
	pflag.StringVar(&logPath, "log", "shotcmp.log", "Log file path. Logs go to stderr when empty.")

	pflag.Parse()
	return cfg, logPath
}

// validateConfig checks if the provided configuration is valid.
func validateConfig(cfg *runner.Config) error {
	if cfg.ManifestPath == "" && (cfg.ReferencePath == "" || cfg.CandidatePath == "") {
		return fmt.Errorf("either --manifest/-m or both --reference/-r and --candidate/-c are required")
	}
	if cfg.ManifestPath != "" && (cfg.ReferencePath != "" || cfg.CandidatePath != "") {
		return fmt.Errorf("--manifest/-m cannot be combined with --reference/-r or --candidate/-c")
	}
	for _, p := range []string{cfg.ManifestPath, cfg.ReferencePath, cfg.CandidatePath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", p)
		}
	}
	if !(cfg.Tolerance >= 0 && cfg.Tolerance <= 1) {
		return fmt.Errorf("--tolerance must be between 0 and 1")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("--workers must be a positive integer")
	}
	if cfg.Qualifiers.Version < 0 {
		return fmt.Errorf("--browser-version must not be negative")
	}
	if cfg.ImageType != "" {
		switch strings.ToLower(cfg.ImageType) {
		case "jpeg", "jpg", "png", "bmp", "webp":
		default:
			return fmt.Errorf("unsupported image type: %s", cfg.ImageType)
		}
	}
	if _, err := comparator.NewMetric(cfg.Metric); err != nil {
		return fmt.Errorf("--metric: %w", err)
	}
	return nil
}
