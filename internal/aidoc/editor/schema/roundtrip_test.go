package schema

import (
	"bytes"
	"net/url"
	"reflect"
	"testing"
)

// fixtureDocument собирает дерево со всеми типами нод и атрибутов.
func fixtureDocument() *Document {
	link, _ := url.Parse("https://example.com/page")

	return &Document{
		Elements: []any{
			&Heading{Level: 2, Content: []any{Text{Content: "Release notes"}}},
			&Paragraph{Content: []any{
				Text{Content: "plain "},
				Text{Content: "bold", Strong: true},
				&HardBreak{},
				Text{Content: "styled", Italic: true, Underlined: true, Strikethrough: true},
				Text{Content: "link", URL: link},
				NewFileLink("/uploads/q3f8xk_1699999999999.summary.pdf", "summary.pdf"),
			}},
			&List{Numbered: true, Elements: []ListItem{
				{Content: []Paragraph{{Content: []any{Text{Content: "first"}}}}},
				{Content: []Paragraph{{Content: []any{Text{Content: "second"}}}}},
			}},
			&List{Elements: []ListItem{
				{Content: []Paragraph{{Content: []any{Text{Content: "bullet"}}}}},
			}},
			&Image{
				Src:    "/uploads/pic.png",
				Alt:    "diagram",
				Title:  "Architecture",
				Width:  "420px",
				Height: DefaultImageHeight,

				CropTop:    5,
				CropRight:  10,
				CropBottom: 0,
				CropLeft:   45,
			},
			&Video{Src: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	doc := fixtureDocument()

	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	parsed, err := ParseJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	if !reflect.DeepEqual(doc, parsed) {
		t.Errorf("round-trip mismatch\n got: %+v\nwant: %+v", parsed, doc)
	}
}

func TestRoundTripTwice(t *testing.T) {
	doc := fixtureDocument()

	first, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	parsed, err := ParseJSON(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	second, err := Serialize(parsed)
	if err != nil {
		t.Fatalf("second Serialize failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("serialization is not stable\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestJSONBScanValue(t *testing.T) {
	doc := fixtureDocument()

	val, err := doc.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned Document
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if !reflect.DeepEqual(doc.Elements, scanned.Elements) {
		t.Error("JSONB scan/value round-trip mismatch")
	}

	var fromNil Document
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if len(fromNil.Elements) != 0 {
		t.Errorf("Scan(nil) Elements = %d, want 0", len(fromNil.Elements))
	}
}
