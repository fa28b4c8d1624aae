package schema

import (
	"encoding/json"
	"io"
)

// ParseJSON парсит JSON дерево нод в Document.
// Набор типов нод закрыт: неизвестный тип, inline нода в блочной позиции или
// блочная нода в inline позиции прерывают парсинг ошибкой SchemaError.
// Первое нарушение отменяет весь разбор, частично разобранное дерево не возвращается.
func ParseJSON(r io.Reader) (*Document, error) {
	var wireDoc wireDocument
	if err := json.NewDecoder(r).Decode(&wireDoc); err != nil {
		return nil, err
	}

	if wireDoc.Type != "doc" {
		return nil, violation(ViolationInvalidRoot, wireDoc.Type)
	}

	doc := &Document{
		Elements: make([]any, 0, len(wireDoc.Content)),
	}

	for _, node := range wireDoc.Content {
		elem, err := parseBlockNode(node)
		if err != nil {
			return nil, err
		}
		doc.Elements = append(doc.Elements, elem)
	}

	return doc, nil
}

// parseBlockNode парсит ноду в блочной позиции (верхний уровень документа).
func parseBlockNode(node wireNode) (any, error) {
	switch node.Type {
	case "paragraph":
		return parseParagraph(node)
	case "heading":
		return parseHeading(node)
	case "bulletList", "orderedList":
		return parseList(node)
	case "image":
		return parseImage(node)
	case "video":
		return parseVideo(node)
	case "text", "fileLink", "hardBreak":
		return nil, violation(ViolationInlineAtBlock, node.Type)
	default:
		return nil, violation(ViolationUnknownNodeType, node.Type)
	}
}

// parseInlineNode парсит ноду в inline позиции (содержимое параграфа или заголовка).
func parseInlineNode(node wireNode) (any, error) {
	switch node.Type {
	case "text":
		return parseText(node)
	case "fileLink":
		return parseFileLink(node)
	case "hardBreak":
		return &HardBreak{}, nil
	case "paragraph", "heading", "bulletList", "orderedList", "listItem", "image", "video":
		return nil, violation(ViolationBlockAtInline, node.Type)
	default:
		return nil, violation(ViolationUnknownNodeType, node.Type)
	}
}
