package snapshot_tools

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	networkColumn = "network"
	asnColumn     = "asn"
)

// ErrMissingColumns is returned when the snapshot header lacks the network or asn column.
var ErrMissingColumns = errors.New("snapshot is missing the network or asn column")

// Row is one snapshot line reduced to the two columns the extractor needs.
type Row struct {
	Network string // Network is a CIDR string or a bare address.
	ASN     string // ASN is the AS identifier as written in the snapshot.
}

// FilterFile opens the snapshot at path and returns the rows announced by asn.
// A missing file is reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func FilterFile(path, asn string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := Filter(file, asn)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return rows, nil
}

// Filter reads a CSV snapshot with a header row and returns, in file order, every row whose
// asn column equals asn exactly. A leading byte order mark is skipped.
func Filter(r io.Reader, asn string) ([]Row, error) {
	utf8Reader := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(utf8Reader)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, err
	}

	networkIdx, asnIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case networkColumn:
			networkIdx = i
		case asnColumn:
			asnIdx = i
		}
	}
	if networkIdx < 0 || asnIdx < 0 {
		return nil, ErrMissingColumns
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) <= networkIdx || len(record) <= asnIdx {
			continue // short line
		}
		if record[asnIdx] != asn {
			continue
		}
		rows = append(rows, Row{Network: record[networkIdx], ASN: record[asnIdx]})
	}

	return rows, nil
}

// Networks returns the network column of rows, in order
func Networks(rows []Row) []string {
	networks := make([]string, len(rows))
	for i, row := range rows {
		networks[i] = row.Network
	}
	return networks
}
