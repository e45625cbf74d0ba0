// Package catalog parses the delimited product feed into typed products and
// derives the filtered/sorted views the storefront renders.
// This package has no UI dependencies and can be used by any frontend.
package catalog

import "strings"

// Record is one parsed data row: header field name -> trimmed cell value.
type Record map[string]string

// Parse converts a raw delimited-text blob into an ordered sequence of
// records. The first non-empty line is the header row; its trimmed cells
// become field names. Every following non-empty line is split on delim,
// trimmed, and zipped positionally with the header. Rows shorter than the
// header fill the missing trailing fields with "".
//
// Both \n and \r\n line endings are supported. Field values may not contain
// the delimiter; the feed format has no quoting.
func Parse(text, delim string) []Record {
	if delim == "" {
		delim = ","
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var headers []string
	var records []Record

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, delim)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}

		if headers == nil {
			headers = cells
			continue
		}

		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rec[h] = cells[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}

	return records
}
