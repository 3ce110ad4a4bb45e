// Command extract_asn exports the prefixes of one ASN from the local CSV snapshot as route lists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KincaidYang/asn_cidr/config"
	"github.com/KincaidYang/asn_cidr/handle_resources"
	"github.com/KincaidYang/asn_cidr/he_tools"
	"github.com/KincaidYang/asn_cidr/metrics"
	"github.com/KincaidYang/asn_cidr/snapshot_tools"
	"github.com/KincaidYang/asn_cidr/utils"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default: config.yaml, config.json or config.toml if present)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] <ASN>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(*configPath, flag.Arg(0)))
}

func run(configPath, asn string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v\n", err)
		return 1
	}
	logCloser := utils.SetupLogging(cfg.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder(metrics.JobExtract)
	extractor := &handle_resources.Extractor{
		SnapshotPath: cfg.Paths.SnapshotFile,
		SnapshotURL:  cfg.SnapshotURL,
		OutputDir:    cfg.Paths.OutputDir,
		Downloader:   snapshot_tools.NewDownloader(he_tools.UserAgent()),
		Metrics:      recorder,
	}

	result := extractor.Extract(ctx, asn)
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Printf("⚠ Failed to write metrics to %s: %v\n", cfg.Metrics.Textfile, err)
	}

	if !result.IsOk() {
		log.Printf("Error: %v\n", result)
		return result.ExitCode()
	}
	log.Printf("✓ %s\n", result.Message)
	return 0
}
