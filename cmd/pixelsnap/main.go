package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"pixelsnap/pkg/batch"
	"pixelsnap/pkg/config"
)

func main() {
	// Parse command line arguments
	input := flag.String("input", "", "Pixel-art image or directory of images")
	output := flag.String("output", "out", "Output file (single input) or directory")
	configPath := flag.String("config", "pixelsnap.yaml", "YAML configuration file (optional)")
	numCores := flag.Int("cores", runtime.NumCPU(), "Number of images to process concurrently")
	filter := flag.String("filter", "box", "Downsampling filter: box, nearest or lanczos")
	boundary := flag.String("boundary", "sentinels", "Peak boundary policy: sentinels or interior")
	format := flag.String("format", ".png", "Output format for directory output: .png, .webp, .bmp or .tiff")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save edge maps and grid overlays")
	intermediaryDir := flag.String("intermediary-dir", "intermediary_results", "Directory to save intermediary results")
	verbose := flag.Bool("verbose", true, "Print one line per image")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags take precedence over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "filter":
			cfg.Processing.Filter = *filter
		case "boundary":
			cfg.Processing.Boundary = *boundary
		case "format":
			cfg.Output.Format = *format
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	policy, err := cfg.BoundaryPolicy()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	kernel, err := cfg.Kernel()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	params := &batch.Params{
		InputPath:               *input,
		OutputPath:              *output,
		NumCores:                cfg.Processing.NumCores,
		Filter:                  kernel,
		Boundary:                policy,
		OutputFormat:            cfg.Output.Format,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
		Verbose:                 cfg.Output.Verbose,
	}

	processor := batch.NewProcessor(params)

	startTime := time.Now()
	summary, err := processor.Process()
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	fmt.Printf("\nProcessed %d images in %.2f seconds: %d shrunk, %d failed\n",
		len(summary.Results), time.Since(startTime).Seconds(), summary.Succeeded, summary.Failed)

	if params.SaveIntermediaryResults {
		fmt.Println("\nIntermediary results saved to:")
		fmt.Printf("%s\n", params.IntermediaryDir)
		fmt.Println("- 01_edge_energy: per-axis gradient magnitude")
		fmt.Println("- 02_edge_signal: edge strength summed across the image")
		fmt.Println("- 03_grid_overlay: detected grid lines over the input")
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
