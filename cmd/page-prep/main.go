package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/page-prep/internal/config"
	"github.com/ironsheep/page-prep/internal/ocr"
	"github.com/ironsheep/page-prep/internal/pipeline"
	"github.com/ironsheep/page-prep/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const defaultConfigFile = "page-prep.yaml"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("page-prep %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		os.Exit(serve(os.Args[2:]))
	}
	os.Exit(batch(os.Args[1:]))
}

func printHelp() {
	fmt.Println("page-prep - rectify and enhance photographs of document pages")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  page-prep [options] INPUT_DIR     Process every image in INPUT_DIR")
	fmt.Println("  page-prep serve [-config FILE]    Run the MCP server on stdin/stdout")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -output DIR          Output directory (default: INPUT_DIR)")
	fmt.Println("  -config FILE         YAML configuration (default: page-prep.yaml)")
	fmt.Println("  -no-ocr              Skip text recognition")
	fmt.Println("  -workers N           Images processed concurrently")
	fmt.Println("  -visual              Also write the human-facing variant")
	fmt.Println("  -write-config FILE   Write the default configuration and exit")
	fmt.Println("  --version, -v        Print version information")
	fmt.Println("  --help, -h           Print this help message")
	fmt.Println()
	fmt.Println("Outputs per image: <name>_processed.jpg, <name>_visual.jpg (with -visual),")
	fmt.Println("<name>_text.txt (with OCR).")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PAGE_PREP_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  PAGE_PREP_OCR=backend        tesseract, vision or none")
	fmt.Println("  GOOGLE_API_KEY=key           Credential for the vision backend")
}

// loadConfig reads path, applies the environment and validates the result.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newRecognizer builds the configured OCR backend. A missing Vision key is
// not fatal: OCR is skipped with a warning.
func newRecognizer(cfg *config.Config) ocr.Recognizer {
	if !cfg.OCR.Enabled {
		return nil
	}
	rec, err := ocr.NewRecognizer(cfg.OCR.Backend, cfg.OCR.Language, cfg.OCR.APIKey)
	if err != nil {
		log.Printf("Warning: %v; OCR will be skipped", err)
		return nil
	}
	if cfg.Debug() && rec != nil {
		log.Printf("OCR backend: %s", rec.Name())
	}
	return rec
}

func serve(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigFile, "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	if cfg.Debug() {
		log.Printf("page-prep MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	p, err := pipeline.New(cfg.Enhancement)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	srv := server.New(p, newRecognizer(cfg), Version)
	if err := srv.Run(); err != nil {
		log.Printf("Server error: %v", err)
		return 1
	}
	return 0
}

func batch(args []string) int {
	fs := flag.NewFlagSet("page-prep", flag.ContinueOnError)
	output := fs.String("output", "", "output directory (default: input directory)")
	configPath := fs.String("config", defaultConfigFile, "YAML configuration file")
	noOCR := fs.Bool("no-ocr", false, "skip text recognition")
	workers := fs.Int("workers", 0, "images processed concurrently (default from configuration)")
	visual := fs.Bool("visual", false, "also write the human-facing variant")
	writeConfig := fs.String("write-config", "", "write the default configuration to FILE and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(config.DefaultConfig(), *writeConfig); err != nil {
			log.Printf("Error: %v", err)
			return 1
		}
		fmt.Printf("Wrote default configuration to %s\n", *writeConfig)
		return 0
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: page-prep [options] INPUT_DIR (see --help)")
		return 2
	}
	inputDir := fs.Arg(0)

	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		log.Printf("Error: input directory %s does not exist", inputDir)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	if *noOCR {
		cfg.OCR.Enabled = false
	}
	if *workers > 0 {
		cfg.Output.Workers = *workers
	}
	if *visual {
		cfg.Output.Visual = true
	}
	if *output != "" {
		cfg.Output.Dir = *output
	}

	p, err := pipeline.New(cfg.Enhancement)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := pipeline.NewDriver(p, pipeline.BatchOptions{
		InputDir:    inputDir,
		OutputDir:   cfg.Output.Dir,
		Workers:     cfg.Output.Workers,
		JPEGQuality: cfg.Output.JPEGQuality,
		Visual:      cfg.Output.Visual,
		Recognizer:  newRecognizer(cfg),
	})

	_, summary, err := driver.Run(ctx)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}
