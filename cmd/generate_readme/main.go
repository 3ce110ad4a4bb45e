// Command generate_readme renders the record store as a Markdown status report.
// It always exits 0; problems are reported as warnings.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KincaidYang/asn_cidr/config"
	"github.com/KincaidYang/asn_cidr/handle_resources"
	"github.com/KincaidYang/asn_cidr/metrics"
	"github.com/KincaidYang/asn_cidr/record_store"
	"github.com/KincaidYang/asn_cidr/utils"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default: config.yaml, config.json or config.toml if present)")
	flag.Parse()

	run(*configPath)
}

func run(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("⚠ Failed to load configuration: %v\n", err)
		return
	}
	logCloser := utils.SetupLogging(cfg.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The report is always rendered from the JSON file, which every backend keeps complete
	recorder := metrics.NewRecorder(metrics.JobReadme)
	generator := &handle_resources.ReadmeGenerator{
		Store:      record_store.NewFileStore(cfg.Paths.StoreFile),
		OutputPath: cfg.Paths.ReadmeFile,
		Metrics:    recorder,
	}

	result := generator.Generate(ctx)
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Printf("⚠ Failed to write metrics to %s: %v\n", cfg.Metrics.Textfile, err)
	}

	if !result.IsOk() {
		log.Printf("⚠ %v\n", result)
		return
	}
	log.Printf("✓ %s\n", result.Message)
}
