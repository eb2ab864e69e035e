package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"picklist/internal/domain"
)

// Markers bounding the parseable region of a scanned picking sheet.
const (
	headerMarker = "POS. LOCALIZ. LOTE"
	footerMarker = "TOTAL"
)

// lineRe matches one picking line: position, inventory code, quantity
// with a comma decimal separator, an internal item number (discarded),
// then the description up to the trailing "PC" unit marker.
var lineRe = regexp.MustCompile(`(?i)^\s*(\d+)\s+([A-Z0-9]+)\s+(\d+,\d+)\s+(\d+)\s+(.+?)\s+PC\s+`)

var spaceRe = regexp.MustCompile(`\s+`)

// Parse turns raw OCR or text-file output into ordered line items.
//
// Parsing is gated: everything before the header marker is ignored, and
// the first footer marker inside the active region stops the parse.
// Lines that do not match the expected layout are skipped, never
// rejected — OCR output is noisy and one garbled line must not make a
// whole sheet unusable. Items come back in source order; duplicate or
// out-of-order positions from malformed input pass through unchanged.
func Parse(raw string) []domain.Item {
	var items []domain.Item

	active := false
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, headerMarker) {
			active = true
			continue
		}
		if active && strings.Contains(line, footerMarker) {
			break
		}
		if !active || strings.TrimSpace(line) == "" || strings.Contains(line, "---") {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		pos, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		qty, err := strconv.ParseFloat(strings.Replace(m[3], ",", ".", 1), 64)
		if err != nil {
			continue
		}

		items = append(items, domain.Item{
			Position:    pos,
			Code:        m[2],
			Description: strings.TrimSpace(spaceRe.ReplaceAllString(m[5], " ")),
			Quantity:    qty,
			Completed:   false,
		})
	}

	return items
}

// FormatSeconds renders an elapsed-seconds count as h:mm:ss, or m:ss
// when under an hour.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
