package he_tools

import (
	"reflect"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>AS13335 Cloudflare, Inc. - bgp.he.net</title></head>
<body>
<div id="prefixes">
<table id="table_prefixes4">
  <thead><tr><th>Prefix</th><th>Description</th></tr></thead>
  <tbody>
    <tr><td><a href="/net/1.1.1.0/24"> 1.1.1.0/24 </a></td><td>APNIC and Cloudflare DNS Resolver project</td></tr>
    <tr><td><a href="/net/104.16.0.0/13">104.16.0.0/13</a></td><td>Cloudflare, Inc.</td></tr>
    <tr><td>no prefixes</td><td></td></tr>
  </tbody>
</table>
</div>
<div id="prefixes6">
<table id="table_prefixes6">
  <thead><tr><th>Prefix</th><th>Description</th></tr></thead>
  <tbody>
    <tr><td><a href="/net/2606:4700::/32">2606:4700::/32</a></td><td>Cloudflare, Inc.</td></tr>
  </tbody>
</table>
</div>
</body>
</html>`

func TestParseASNPage(t *testing.T) {
	page, err := ParseASNPage(samplePage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Name != "Cloudflare, Inc." {
		t.Errorf("expected name %q, got %q", "Cloudflare, Inc.", page.Name)
	}
	if !page.HasIPv4Table || !page.HasIPv6Table {
		t.Errorf("expected both tables to be found, got v4=%v v6=%v", page.HasIPv4Table, page.HasIPv6Table)
	}

	expected4 := []string{"1.1.1.0/24", "104.16.0.0/13"}
	if !reflect.DeepEqual(page.IPv4Prefixes, expected4) {
		t.Errorf("expected IPv4 %v, got %v", expected4, page.IPv4Prefixes)
	}
	expected6 := []string{"2606:4700::/32"}
	if !reflect.DeepEqual(page.IPv6Prefixes, expected6) {
		t.Errorf("expected IPv6 %v, got %v", expected6, page.IPv6Prefixes)
	}
}

func TestParseASNPageMissingTables(t *testing.T) {
	page, err := ParseASNPage(`<html><head><title>AS64512 - bgp.he.net</title></head><body><p>nothing here</p></body></html>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.HasIPv4Table || page.HasIPv6Table {
		t.Errorf("expected no tables, got %+v", page)
	}
	if len(page.IPv4Prefixes) != 0 || len(page.IPv6Prefixes) != 0 {
		t.Errorf("expected no prefixes, got %+v", page)
	}
	if page.Name != UnknownName {
		t.Errorf("expected name %q, got %q", UnknownName, page.Name)
	}
}

func TestParseASNPageTableWithoutTbody(t *testing.T) {
	// The HTML parser inserts the implied tbody
	page, err := ParseASNPage(`<table id="table_prefixes4"><tr><td>192.0.2.0/24</td></tr></table>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(page.IPv4Prefixes, []string{"192.0.2.0/24"}) {
		t.Errorf("unexpected prefixes: %v", page.IPv4Prefixes)
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"AS13335 Cloudflare, Inc. - bgp.he.net", "Cloudflare, Inc."},
		{"AS15169 (Google LLC) - bgp.he.net", "Google LLC"},
		{"AS15169(Google LLC)", "Google LLC"},
		{"AS64500 Multi-Word-Name - bgp.he.net", "Multi-Word-Name"},
		{"AS64512 - bgp.he.net", UnknownName},
		{"", UnknownName},
		{"   ", UnknownName},
		{"bgp.he.net", "bgp.he.net"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := ExtractName(tt.title); got != tt.expected {
				t.Errorf("ExtractName(%q) = %q, expected %q", tt.title, got, tt.expected)
			}
		})
	}
}
