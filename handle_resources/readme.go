package handle_resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/KincaidYang/asn_cidr/he_tools"
	"github.com/KincaidYang/asn_cidr/metrics"
	"github.com/KincaidYang/asn_cidr/prefix_tools"
	"github.com/KincaidYang/asn_cidr/record_store"
	"github.com/KincaidYang/asn_cidr/utils"
)

const readmeTemplate = `# 全球 ASN CIDR 列表

**说明：** 此数据每日从 [bgp.he.net](https://bgp.he.net/) 自动获取。

---

## 📊 统计信息

**最后更新时间：** {{.UpdatedAt}} UTC

### 📦 概览
- **包含数据的 ASN 总数：** {{.TotalASNs}}
- **IPv4 CIDR 总数：** {{.TotalV4}}
- **IPv6 CIDR 总数：** {{.TotalV6}}

### 🛠️ ASN CIDR 详情列表

| ASN | 名称 | IPv4 数量 | IPv6 数量 | 更新时间 (UTC) |
|-----|------|-----------|-----------|----------------|
{{range .Rows}}| {{.ASN}} | {{.Name}} | {{.V4Count}} | {{.V6Count}} | {{.UpdatedAt}} |
{{end}}
---
*此信息由 GitHub Actions 自动更新*
`

var readmeTmpl = template.Must(template.New("readme").Parse(readmeTemplate))

// readmeData is what the report template renders
type readmeData struct {
	UpdatedAt string
	TotalASNs int
	TotalV4   int
	TotalV6   int
	Rows      []readmeRow
}

type readmeRow struct {
	ASN       string
	Name      string
	V4Count   int
	V6Count   int
	UpdatedAt string
}

// ReadmeGenerator renders the record store as a Markdown status report
type ReadmeGenerator struct {
	Store      record_store.Store
	OutputPath string
	Metrics    *metrics.Recorder
	// Now returns the generation time. Defaults to time.Now.
	Now func() time.Time
}

// Generate overwrites OutputPath with the report.
// A missing or unreadable store is warned about and leaves the output alone.
func (g *ReadmeGenerator) Generate(ctx context.Context) (result utils.Result) {
	defer func() { g.Metrics.ObserveRun(result) }()

	records, err := g.Store.Records(ctx)
	if err != nil {
		var corrupt *record_store.CorruptError
		switch {
		case errors.Is(err, record_store.ErrStoreNotFound):
			log.Printf("⚠ Record store not found, %s not written: %v\n", g.OutputPath, err)
		case errors.As(err, &corrupt):
			log.Printf("⚠ Record store is unreadable, %s not written: %v\n", g.OutputPath, err)
		default:
			log.Printf("⚠ Failed to read record store, %s not written: %v\n", g.OutputPath, err)
		}
		return utils.Ok("report skipped: %v", err)
	}

	content, err := RenderReadme(records, g.now())
	if err != nil {
		log.Printf("⚠ Failed to render report: %v\n", err)
		return utils.Err(utils.ErrorKindInternal, err)
	}

	if err := os.WriteFile(g.OutputPath, content, 0644); err != nil {
		log.Printf("⚠ Failed to write %s: %v\n", g.OutputPath, err)
		return utils.Err(utils.ErrorKindPersistence, fmt.Errorf("failed to write %s: %w", g.OutputPath, err))
	}

	log.Printf("✓ Generated %s (%d ASNs)\n", g.OutputPath, len(records))
	return utils.Ok("%s generated with %d ASNs", g.OutputPath, len(records))
}

func (g *ReadmeGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// RenderReadme renders records as the Markdown report generated at now
func RenderReadme(records map[string]record_store.ASNRecord, now time.Time) ([]byte, error) {
	data := readmeData{
		UpdatedAt: now.UTC().Format(prefix_tools.TimestampLayout),
		TotalASNs: len(records),
	}

	keys := make([]string, 0, len(records))
	for key, record := range records {
		keys = append(keys, key)
		data.TotalV4 += record.V4Count
		data.TotalV6 += record.V6Count
	}
	SortASNs(keys)

	for _, key := range keys {
		record := records[key]
		row := readmeRow{
			ASN:       key,
			Name:      escapeCell(record.Name),
			V4Count:   record.V4Count,
			V6Count:   record.V6Count,
			UpdatedAt: record.UpdatedAt,
		}
		if row.Name == "" {
			row.Name = he_tools.UnknownName
		}
		if row.UpdatedAt == "" {
			row.UpdatedAt = "-"
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := readmeTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SortASNs orders keys with numeric ASNs first by value, then the others lexicographically
func SortASNs(keys []string) {
	slices.SortFunc(keys, compareASN)
}

func compareASN(a, b string) int {
	numA, okA := utils.ASNNumber(a)
	numB, okB := utils.ASNNumber(b)

	switch {
	case okA && okB:
		if c := compareDigits(numA, numB); c != 0 {
			return c
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

// compareDigits compares two decimal strings by value without parsing, so any length works
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// escapeCell keeps a value from breaking the Markdown table
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
