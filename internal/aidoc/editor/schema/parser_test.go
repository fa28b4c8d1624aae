package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestParseParagraph(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Hello"},{"type":"hardBreak"},{"type":"text","text":"World","marks":[{"type":"bold"}]}]}]}`

	doc, err := ParseJSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	if len(doc.Elements) != 1 {
		t.Fatalf("Elements = %d, want 1", len(doc.Elements))
	}

	p, ok := doc.Elements[0].(*Paragraph)
	if !ok {
		t.Fatalf("Elements[0] is not Paragraph, got %T", doc.Elements[0])
	}

	if len(p.Content) != 3 {
		t.Fatalf("Content = %d, want 3", len(p.Content))
	}

	text, ok := p.Content[0].(Text)
	if !ok {
		t.Fatalf("Content[0] is not Text, got %T", p.Content[0])
	}
	if text.Content != "Hello" {
		t.Errorf("Text.Content = %q, want %q", text.Content, "Hello")
	}

	if _, ok := p.Content[1].(*HardBreak); !ok {
		t.Fatalf("Content[1] is not HardBreak, got %T", p.Content[1])
	}

	bold, ok := p.Content[2].(Text)
	if !ok {
		t.Fatalf("Content[2] is not Text, got %T", p.Content[2])
	}
	if !bold.Strong {
		t.Error("Strong mark not applied")
	}
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantLevel int
		wantErr   string
	}{
		{
			name:      "level 1",
			json:      `{"type":"doc","content":[{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Title"}]}]}`,
			wantLevel: 1,
		},
		{
			name:      "level 3",
			json:      `{"type":"doc","content":[{"type":"heading","attrs":{"level":3},"content":[{"type":"text","text":"Sub"}]}]}`,
			wantLevel: 3,
		},
		{
			name:    "level 4 rejected",
			json:    `{"type":"doc","content":[{"type":"heading","attrs":{"level":4},"content":[]}]}`,
			wantErr: ViolationInvalidLevel,
		},
		{
			name:    "missing level rejected",
			json:    `{"type":"doc","content":[{"type":"heading","content":[]}]}`,
			wantErr: ViolationInvalidLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseJSON(strings.NewReader(tt.json))
			if tt.wantErr != "" {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("err = %v, want SchemaError", err)
				}
				if schemaErr.Kind != tt.wantErr {
					t.Errorf("Kind = %q, want %q", schemaErr.Kind, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseJSON failed: %v", err)
			}

			h, ok := doc.Elements[0].(*Heading)
			if !ok {
				t.Fatalf("Elements[0] is not Heading, got %T", doc.Elements[0])
			}
			if h.Level != tt.wantLevel {
				t.Errorf("Level = %d, want %d", h.Level, tt.wantLevel)
			}
		})
	}
}

func TestParseRejectsUnknownNodeType(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"paragraph","content":[]},{"type":"marquee","content":[]}]}`

	_, err := ParseJSON(strings.NewReader(raw))

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if schemaErr.Kind != ViolationUnknownNodeType {
		t.Errorf("Kind = %q, want %q", schemaErr.Kind, ViolationUnknownNodeType)
	}
	if schemaErr.NodeType != "marquee" {
		t.Errorf("NodeType = %q, want %q", schemaErr.NodeType, "marquee")
	}
}

func TestParseRejectsMisplacedNodes(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "inline text at block position",
			json: `{"type":"doc","content":[{"type":"text","text":"loose"}]}`,
			want: ViolationInlineAtBlock,
		},
		{
			name: "inline fileLink at block position",
			json: `{"type":"doc","content":[{"type":"fileLink","attrs":{"href":"x"}}]}`,
			want: ViolationInlineAtBlock,
		},
		{
			name: "block paragraph at inline position",
			json: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"paragraph"}]}]}`,
			want: ViolationBlockAtInline,
		},
		{
			name: "block image at inline position",
			json: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"image"}]}]}`,
			want: ViolationBlockAtInline,
		},
		{
			name: "list item with non-paragraph content",
			json: `{"type":"doc","content":[{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"image"}]}]}]}`,
			want: ViolationBlockAtInline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(tt.json))

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("err = %v, want SchemaError", err)
			}
			if schemaErr.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", schemaErr.Kind, tt.want)
			}
		})
	}
}

func TestParseImageDefaults(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"image","attrs":{"src":"/uploads/pic.png"}}]}`

	doc, err := ParseJSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	img, ok := doc.Elements[0].(*Image)
	if !ok {
		t.Fatalf("Elements[0] is not Image, got %T", doc.Elements[0])
	}

	if img.Width != DefaultImageWidth {
		t.Errorf("Width = %q, want %q", img.Width, DefaultImageWidth)
	}
	if img.Height != DefaultImageHeight {
		t.Errorf("Height = %q, want %q", img.Height, DefaultImageHeight)
	}
	if img.CropTop != 0 || img.CropRight != 0 || img.CropBottom != 0 || img.CropLeft != 0 {
		t.Errorf("crop defaults = %d/%d/%d/%d, want all 0", img.CropTop, img.CropRight, img.CropBottom, img.CropLeft)
	}
}

func TestParseImageClampsCrop(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"image","attrs":{"src":"x","cropTop":90,"cropRight":-5,"cropBottom":45,"cropLeft":12}}]}`

	doc, err := ParseJSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	img := doc.Elements[0].(*Image)

	if img.CropTop != CropMax {
		t.Errorf("CropTop = %d, want %d", img.CropTop, CropMax)
	}
	if img.CropRight != 0 {
		t.Errorf("CropRight = %d, want 0", img.CropRight)
	}
	if img.CropBottom != 45 {
		t.Errorf("CropBottom = %d, want 45", img.CropBottom)
	}
	if img.CropLeft != 12 {
		t.Errorf("CropLeft = %d, want 12", img.CropLeft)
	}
}

func TestParseFileLinkDefaults(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"fileLink","attrs":{"href":"/uploads/a.pdf","displayName":"report.pdf"}}]}]}`

	doc, err := ParseJSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	p := doc.Elements[0].(*Paragraph)
	fl, ok := p.Content[0].(*FileLink)
	if !ok {
		t.Fatalf("Content[0] is not FileLink, got %T", p.Content[0])
	}

	if fl.Target != DefaultLinkTarget {
		t.Errorf("Target = %q, want %q", fl.Target, DefaultLinkTarget)
	}
	if fl.DisplayName != "report.pdf" {
		t.Errorf("DisplayName = %q, want %q", fl.DisplayName, "report.pdf")
	}
}

func TestWordCount(t *testing.T) {
	raw := `{"type":"doc","content":[
		{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Quarterly report"}]},
		{"type":"paragraph","content":[{"type":"text","text":"Revenue grew by  ten percent"}]},
		{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"first item"}]}]}]}
	]}`

	doc, err := ParseJSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	if got := doc.WordCount(); got != 9 {
		t.Errorf("WordCount = %d, want 9", got)
	}
}

func TestIsEmpty(t *testing.T) {
	empty := &Document{Elements: []any{&Paragraph{}}}
	if !empty.IsEmpty() {
		t.Error("document with empty paragraph should be empty")
	}

	whitespace := &Document{Elements: []any{&Paragraph{Content: []any{Text{Content: "   "}}}}}
	if !whitespace.IsEmpty() {
		t.Error("document with whitespace-only text should be empty")
	}

	withImage := &Document{Elements: []any{NewImage("/uploads/x.png")}}
	if withImage.IsEmpty() {
		t.Error("document with image should not be empty")
	}

	withText := &Document{Elements: []any{&Paragraph{Content: []any{Text{Content: "hi"}}}}}
	if withText.IsEmpty() {
		t.Error("document with text should not be empty")
	}
}
