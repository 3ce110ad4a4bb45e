package he_tools

import (
	"regexp"
	"strings"

	"github.com/KincaidYang/asn_cidr/he_tools/structs"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	ipv4TableID = "table_prefixes4"
	ipv6TableID = "table_prefixes6"

	// UnknownName is used when the page title yields no AS name
	UnknownName = "Unknown"
)

var titleNamePattern = regexp.MustCompile(`AS\d+\s*\(([^)]*)\)`)

// ParseASNPage extracts the AS name and the IPv4 and IPv6 prefix tables from an AS page.
// Missing elements leave the corresponding fields empty; only an unparseable document is an error.
func ParseASNPage(response string) (structs.ASNPage, error) {
	doc, err := html.Parse(strings.NewReader(response))
	if err != nil {
		return structs.ASNPage{}, err
	}

	page := structs.ASNPage{}

	if title := findFirst(doc, atom.Title); title != nil {
		page.Title = strings.TrimSpace(textContent(title, false))
	}
	page.Name = ExtractName(page.Title)

	if table := findTableByID(doc, ipv4TableID); table != nil {
		page.HasIPv4Table = true
		page.IPv4Prefixes = prefixesFromTable(table)
	}
	if table := findTableByID(doc, ipv6TableID); table != nil {
		page.HasIPv6Table = true
		page.IPv6Prefixes = prefixesFromTable(table)
	}

	return page, nil
}

// ExtractName derives the AS name from a page title.
// "AS<digits> (<name>)" wins; otherwise the text after the first space, cut at its last hyphen, is used.
// An empty result becomes UnknownName.
func ExtractName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UnknownName
	}

	if match := titleNamePattern.FindStringSubmatch(title); match != nil {
		if name := strings.TrimSpace(match[1]); name != "" {
			return name
		}
	}

	rest := title
	if i := strings.Index(title, " "); i >= 0 {
		rest = title[i+1:]
	}
	if i := strings.LastIndex(rest, "-"); i >= 0 {
		rest = rest[:i]
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return UnknownName
	}
	return rest
}

// prefixesFromTable returns the first cell of every body row that looks like a prefix
func prefixesFromTable(table *html.Node) []string {
	tbody := findFirst(table, atom.Tbody)
	if tbody == nil {
		return nil
	}

	var prefixes []string
	for row := tbody.FirstChild; row != nil; row = row.NextSibling {
		if row.Type != html.ElementNode || row.DataAtom != atom.Tr {
			continue
		}
		cell := findFirst(row, atom.Td)
		if cell == nil {
			continue
		}
		// Header and placeholder rows carry no '/'
		if prefix := textContent(cell, true); strings.Contains(prefix, "/") {
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// findFirst returns the first descendant element of n with the given tag, depth first
func findFirst(n *html.Node, tag atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			return c
		}
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findTableByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTableByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text below n. With strip set, every text fragment is trimmed first.
func textContent(n *html.Node, strip bool) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if strip {
				sb.WriteString(strings.TrimSpace(n.Data))
			} else {
				sb.WriteString(n.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
