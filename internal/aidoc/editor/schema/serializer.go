package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Serialize сериализует Document в JSON дерево нод.
// Гарантируется round-trip: ParseJSON(Serialize(doc)) возвращает структурно
// равный документ с сохранением порядка нод и всех атрибутов.
func Serialize(doc *Document) ([]byte, error) {
	wireDoc := wireDocument{
		Type:    "doc",
		Content: make([]wireNode, 0, len(doc.Elements)),
	}

	for _, elem := range doc.Elements {
		node, err := serializeElement(elem)
		if err != nil {
			return nil, err
		}
		wireDoc.Content = append(wireDoc.Content, *node)
	}

	return json.Marshal(wireDoc)
}

// MarshalJSON реализует кастомную сериализацию Document в JSON дерево нод.
func (d *Document) MarshalJSON() ([]byte, error) {
	return Serialize(d)
}

// UnmarshalJSON реализует кастомную десериализацию JSON дерева нод в Document.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := ParseJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	d.Elements = doc.Elements
	return nil
}

// serializeElement преобразует блочный элемент документа в wire ноду.
func serializeElement(elem any) (*wireNode, error) {
	switch e := elem.(type) {
	case *Paragraph:
		return serializeParagraph(e)
	case *Heading:
		return serializeHeading(e)
	case *List:
		return serializeList(e)
	case *Image:
		return serializeImage(e), nil
	case *Video:
		return serializeVideo(e), nil
	default:
		return nil, fmt.Errorf("unsupported element type %T", elem)
	}
}

// serializeInline преобразует inline содержимое параграфа или заголовка.
func serializeInline(content any) (*wireNode, error) {
	switch c := content.(type) {
	case Text:
		return serializeText(&c), nil
	case *FileLink:
		return serializeFileLink(c), nil
	case *HardBreak:
		return &wireNode{Type: "hardBreak"}, nil
	default:
		return nil, fmt.Errorf("unsupported inline content type %T", content)
	}
}

func serializeParagraph(p *Paragraph) (*wireNode, error) {
	node := &wireNode{
		Type:    "paragraph",
		Content: make([]wireNode, 0, len(p.Content)),
	}

	for _, content := range p.Content {
		childNode, err := serializeInline(content)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, *childNode)
	}

	return node, nil
}

func serializeHeading(h *Heading) (*wireNode, error) {
	node := &wireNode{
		Type: "heading",
		Attrs: map[string]interface{}{
			"level": h.Level,
		},
		Content: make([]wireNode, 0, len(h.Content)),
	}

	for _, content := range h.Content {
		childNode, err := serializeInline(content)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, *childNode)
	}

	return node, nil
}

func serializeList(l *List) (*wireNode, error) {
	listType := "bulletList"
	if l.Numbered {
		listType = "orderedList"
	}

	node := &wireNode{
		Type:    listType,
		Content: make([]wireNode, 0, len(l.Elements)),
	}

	for _, item := range l.Elements {
		itemNode := wireNode{
			Type:    "listItem",
			Content: make([]wireNode, 0, len(item.Content)),
		}

		for _, p := range item.Content {
			childNode, err := serializeParagraph(&p)
			if err != nil {
				return nil, err
			}
			itemNode.Content = append(itemNode.Content, *childNode)
		}

		node.Content = append(node.Content, itemNode)
	}

	return node, nil
}

// serializeText преобразует Text в wire текстовую ноду с marks форматирования.
func serializeText(t *Text) *wireNode {
	node := &wireNode{
		Type: "text",
		Text: t.Content,
	}

	marks := make([]wireMark, 0)

	if t.Strong {
		marks = append(marks, wireMark{Type: "bold"})
	}
	if t.Italic {
		marks = append(marks, wireMark{Type: "italic"})
	}
	if t.Underlined {
		marks = append(marks, wireMark{Type: "underline"})
	}
	if t.Strikethrough {
		marks = append(marks, wireMark{Type: "strike"})
	}

	if t.URL != nil {
		marks = append(marks, wireMark{
			Type: "link",
			Attrs: map[string]interface{}{
				"href":   t.URL.String(),
				"target": DefaultLinkTarget,
			},
		})
	}

	if len(marks) > 0 {
		node.Marks = marks
	}

	return node
}

// serializeImage всегда выписывает полный набор атрибутов, включая нулевые
// значения обрезки, чтобы сохранить round-trip.
func serializeImage(img *Image) *wireNode {
	width := img.Width
	if width == "" {
		width = DefaultImageWidth
	}
	height := img.Height
	if height == "" {
		height = DefaultImageHeight
	}

	return &wireNode{
		Type: "image",
		Attrs: map[string]interface{}{
			"src":        img.Src,
			"alt":        img.Alt,
			"title":      img.Title,
			"width":      width,
			"height":     height,
			"cropTop":    img.CropTop,
			"cropRight":  img.CropRight,
			"cropBottom": img.CropBottom,
			"cropLeft":   img.CropLeft,
		},
	}
}

func serializeVideo(v *Video) *wireNode {
	return &wireNode{
		Type: "video",
		Attrs: map[string]interface{}{
			"src": v.Src,
		},
	}
}

func serializeFileLink(fl *FileLink) *wireNode {
	target := fl.Target
	if target == "" {
		target = DefaultLinkTarget
	}

	return &wireNode{
		Type: "fileLink",
		Attrs: map[string]interface{}{
			"href":        fl.Href,
			"target":      target,
			"displayName": fl.DisplayName,
		},
	}
}
