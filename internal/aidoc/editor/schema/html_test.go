package schema

import (
	"strings"
	"testing"
)

func TestParseHTMLBlocks(t *testing.T) {
	raw := `<p>Hello<br><strong>World</strong></p><h2>Chapter</h2><ol><li>first</li><li>second</li></ol>`

	doc, err := ParseHTML(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	if len(doc.Elements) != 3 {
		t.Fatalf("Elements = %d, want 3", len(doc.Elements))
	}

	p, ok := doc.Elements[0].(*Paragraph)
	if !ok {
		t.Fatalf("Elements[0] is not Paragraph, got %T", doc.Elements[0])
	}
	if len(p.Content) != 3 {
		t.Fatalf("Content = %d, want 3", len(p.Content))
	}
	if text := p.Content[0].(Text); text.Content != "Hello" {
		t.Errorf("Text.Content = %q, want %q", text.Content, "Hello")
	}
	if _, ok := p.Content[1].(*HardBreak); !ok {
		t.Fatalf("Content[1] is not HardBreak, got %T", p.Content[1])
	}
	if bold := p.Content[2].(Text); !bold.Strong {
		t.Error("Strong mark not applied")
	}

	h, ok := doc.Elements[1].(*Heading)
	if !ok {
		t.Fatalf("Elements[1] is not Heading, got %T", doc.Elements[1])
	}
	if h.Level != 2 {
		t.Errorf("Heading.Level = %d, want 2", h.Level)
	}

	list, ok := doc.Elements[2].(*List)
	if !ok {
		t.Fatalf("Elements[2] is not List, got %T", doc.Elements[2])
	}
	if !list.Numbered {
		t.Error("ol must produce numbered list")
	}
	if len(list.Elements) != 2 {
		t.Fatalf("List.Elements = %d, want 2", len(list.Elements))
	}
	item := list.Elements[1]
	if len(item.Content) != 1 || len(item.Content[0].Content) != 1 {
		t.Fatalf("unexpected list item shape: %+v", item)
	}
	if text := item.Content[0].Content[0].(Text); text.Content != "second" {
		t.Errorf("list item text = %q, want %q", text.Content, "second")
	}
}

func TestParseHTMLImage(t *testing.T) {
	raw := `<img src="/uploads/pic.png" alt="pic" width="240px" data-crop-left="90" data-crop-top="-5"><img src="/uploads/plain.png">`

	doc, err := ParseHTML(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if len(doc.Elements) != 2 {
		t.Fatalf("Elements = %d, want 2", len(doc.Elements))
	}

	img := doc.Elements[0].(*Image)
	if img.Src != "/uploads/pic.png" || img.Alt != "pic" {
		t.Errorf("unexpected image attrs: %+v", img)
	}
	if img.Width != "240px" {
		t.Errorf("Width = %q, want %q", img.Width, "240px")
	}
	if img.Height != DefaultImageHeight {
		t.Errorf("Height = %q, want default %q", img.Height, DefaultImageHeight)
	}
	// Импортированные значения обрезки проходят ту же фиксацию диапазона
	if img.CropLeft != CropMax {
		t.Errorf("CropLeft = %d, want %d", img.CropLeft, CropMax)
	}
	if img.CropTop != CropMin {
		t.Errorf("CropTop = %d, want %d", img.CropTop, CropMin)
	}

	plain := doc.Elements[1].(*Image)
	if plain.Width != DefaultImageWidth || plain.Height != DefaultImageHeight {
		t.Errorf("defaults not applied: %+v", plain)
	}
}

func TestParseHTMLFileLink(t *testing.T) {
	raw := `<p><a data-type="file-link" href="/uploads/a1b2c3_1699999999999.report.pdf">report.pdf</a></p>`

	doc, err := ParseHTML(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	p := doc.Elements[0].(*Paragraph)
	fl, ok := p.Content[0].(*FileLink)
	if !ok {
		t.Fatalf("Content[0] is not FileLink, got %T", p.Content[0])
	}
	if fl.Href != "/uploads/a1b2c3_1699999999999.report.pdf" {
		t.Errorf("Href = %q", fl.Href)
	}
	if fl.Target != DefaultLinkTarget {
		t.Errorf("Target = %q, want %q", fl.Target, DefaultLinkTarget)
	}
	if fl.DisplayName != "report.pdf" {
		t.Errorf("DisplayName = %q, want %q", fl.DisplayName, "report.pdf")
	}
}

func TestParseHTMLSkipsUnsupported(t *testing.T) {
	raw := `<table><tr><td>cell</td></tr></table><p>kept</p><script>alert(1)</script>`

	doc, err := ParseHTML(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	if len(doc.Elements) != 1 {
		t.Fatalf("Elements = %d, want 1", len(doc.Elements))
	}
	p := doc.Elements[0].(*Paragraph)
	if text := p.Content[0].(Text); text.Content != "kept" {
		t.Errorf("Text.Content = %q, want %q", text.Content, "kept")
	}
}

func TestParseHTMLVideo(t *testing.T) {
	raw := `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ"></iframe>`

	doc, err := ParseHTML(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	v, ok := doc.Elements[0].(*Video)
	if !ok {
		t.Fatalf("Elements[0] is not Video, got %T", doc.Elements[0])
	}
	if v.Src != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("Src = %q", v.Src)
	}
}
