package parser_test

import (
	"reflect"
	"testing"

	"picklist/internal/parser"
)

const sampleSheet = `WAREHOUSE 04 - SEPARATION SHEET
garbage line before the header
POS. LOCALIZ. LOTE header
----------------------------------------
1 ABC123 10,5 99 Blue Sheet Set PC extra
2 XYZ900 2,0 100 Pillow   Case  Standard PC x
not a picking line at all
3 QQ12 1,25 7 Mattress Cover pc trailing
TOTAL 3
4 ZZZ111 9,0 5 After Total Never Seen PC x
`

func TestParseGatedRegion(t *testing.T) {
	items := parser.Parse(sampleSheet)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}

	first := items[0]
	if first.Position != 1 || first.Code != "ABC123" || first.Quantity != 10.5 {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Description != "Blue Sheet Set" {
		t.Fatalf("description not trimmed at unit marker: %q", first.Description)
	}
	if first.Completed {
		t.Fatal("items must start incomplete")
	}

	// Internal whitespace collapsed, unit marker matched case-insensitively.
	if items[1].Description != "Pillow Case Standard" {
		t.Fatalf("whitespace not collapsed: %q", items[1].Description)
	}
	if items[2].Position != 3 || items[2].Quantity != 1.25 {
		t.Fatalf("lowercase pc marker not matched: %+v", items[2])
	}
}

func TestParseIdempotent(t *testing.T) {
	a := parser.Parse(sampleSheet)
	b := parser.Parse(sampleSheet)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("parse not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestParseSkipsUnmatchedLines(t *testing.T) {
	in := "POS. LOCALIZ. LOTE\n" +
		"totally garbled ocr noise\n" +
		"1 AA1 1,0 2 Towel PC \n" +
		"5 missing-fields\n" +
		"2 BB2 3,5 9 Duvet Cover PC \n"
	items := parser.Parse(in)
	if len(items) != 2 {
		t.Fatalf("expected 2 items around garbage lines, got %d", len(items))
	}
	if items[0].Code != "AA1" || items[1].Code != "BB2" {
		t.Fatalf("wrong items survived: %+v", items)
	}
}

func TestParseNoHeaderYieldsNothing(t *testing.T) {
	if items := parser.Parse("1 AA1 1,0 2 Towel PC \n2 BB2 3,5 9 Duvet PC \n"); items != nil {
		t.Fatalf("lines before header must be ignored, got %+v", items)
	}
}

func TestParseDuplicatePositionsPassThrough(t *testing.T) {
	in := "POS. LOCALIZ. LOTE\n" +
		"7 AA1 1,0 2 Towel PC \n" +
		"7 BB2 2,0 3 Towel Again PC \n"
	items := parser.Parse(in)
	if len(items) != 2 || items[0].Position != 7 || items[1].Position != 7 {
		t.Fatalf("duplicate positions must not be deduplicated: %+v", items)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{65, "1:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-5, "0:00"},
	}
	for _, c := range cases {
		if got := parser.FormatSeconds(c.in); got != c.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
