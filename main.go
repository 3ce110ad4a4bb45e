package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KincaidYang/asn_cidr/config"
	"github.com/KincaidYang/asn_cidr/handle_resources"
	"github.com/KincaidYang/asn_cidr/he_tools"
	"github.com/KincaidYang/asn_cidr/record_store"
	"github.com/KincaidYang/asn_cidr/snapshot_tools"
	"github.com/KincaidYang/asn_cidr/utils"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ASNInput is the argument of the per-ASN tools
type ASNInput struct {
	ASN string `json:"asn" jsonschema:"AS number, with or without the AS prefix, e.g. AS13335 or 13335"`
}

// ResultOutput is the outcome of a job run through a tool
type ResultOutput struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ListOutput is the content of the record store
type ListOutput struct {
	Records []record_store.ASNRecord `json:"records"`
	Message string                   `json:"message,omitempty"`
}

// toolServer runs the jobs behind the MCP tools
type toolServer struct {
	extractor *handle_resources.Extractor
	fetcher   *handle_resources.Fetcher
	readme    *handle_resources.ReadmeGenerator
	store     record_store.Store
}

func newResultOutput(result utils.Result) ResultOutput {
	return ResultOutput{
		OK:      result.IsOk(),
		Kind:    result.Kind.String(),
		Message: result.Message,
	}
}

func (s *toolServer) extractASN(ctx context.Context, req *mcp.CallToolRequest, in ASNInput) (*mcp.CallToolResult, ResultOutput, error) {
	return nil, newResultOutput(s.extractor.Extract(ctx, in.ASN)), nil
}

func (s *toolServer) fetchASN(ctx context.Context, req *mcp.CallToolRequest, in ASNInput) (*mcp.CallToolResult, ResultOutput, error) {
	return nil, newResultOutput(s.fetcher.Fetch(ctx, in.ASN)), nil
}

func (s *toolServer) generateReadme(ctx context.Context, req *mcp.CallToolRequest, in struct{}) (*mcp.CallToolResult, ResultOutput, error) {
	return nil, newResultOutput(s.readme.Generate(ctx)), nil
}

func (s *toolServer) listASNs(ctx context.Context, req *mcp.CallToolRequest, in struct{}) (*mcp.CallToolResult, ListOutput, error) {
	out := ListOutput{Records: []record_store.ASNRecord{}}

	records, err := s.store.Records(ctx)
	if errors.Is(err, record_store.ErrStoreNotFound) {
		out.Message = "record store is empty"
		return nil, out, nil
	} else if err != nil {
		return nil, out, err
	}

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	handle_resources.SortASNs(keys)
	for _, key := range keys {
		out.Records = append(out.Records, records[key])
	}
	return nil, out, nil
}

func (s *toolServer) health(ctx context.Context, req *mcp.CallToolRequest, in struct{}) (*mcp.CallToolResult, handle_resources.HealthStatus, error) {
	return nil, handle_resources.Health(s.store), nil
}

// newServer registers the tools on an MCP server
func newServer(s *toolServer) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "asn_cidr", Version: config.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_asn",
		Description: "Export the prefixes of an ASN from the local CSV snapshot as route-list files",
	}, s.extractASN)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_asn",
		Description: "Fetch the prefixes of an ASN from bgp.he.net, write route-list files and update the record store",
	}, s.fetchASN)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_readme",
		Description: "Render the record store as the Markdown status report",
	}, s.generateReadme)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_asns",
		Description: "List the ASN records in the record store, sorted by ASN",
	}, s.listASNs)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "health",
		Description: "Report the record store backend state and build information",
	}, s.health)

	return server
}

func main() {
	configPath := flag.String("config", "", "configuration file (default: config.yaml, config.json or config.toml if present)")
	flag.Parse()

	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Log.Stderr = true
	logCloser := utils.SetupLogging(cfg.Log)
	defer logCloser.Close()

	httpClient, err := config.NewHTTPClient(cfg)
	if err != nil {
		log.Fatalf("Failed to configure HTTP client: %v", err)
	}
	store, closeStore, err := record_store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer closeStore()

	minDelay, maxDelay := cfg.FetchDelay()
	s := &toolServer{
		extractor: &handle_resources.Extractor{
			SnapshotPath: cfg.Paths.SnapshotFile,
			SnapshotURL:  cfg.SnapshotURL,
			OutputDir:    cfg.Paths.OutputDir,
			Downloader:   snapshot_tools.NewDownloader(he_tools.UserAgent()),
		},
		fetcher: &handle_resources.Fetcher{
			Client:    he_tools.NewClient(httpClient, cfg.Fetch.BaseURL, minDelay, maxDelay),
			Store:     store,
			OutputDir: cfg.Paths.OutputDir,
		},
		readme: &handle_resources.ReadmeGenerator{
			Store:      record_store.NewFileStore(cfg.Paths.StoreFile),
			OutputPath: cfg.Paths.ReadmeFile,
		},
		store: store,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("asn_cidr %s serving MCP over stdio\n", config.Version)
	if err := newServer(s).Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Server stopped: %v\n", err)
		logCloser.Close()
		closeStore()
		os.Exit(1)
	}
	log.Println("Server gracefully stopped")
}
