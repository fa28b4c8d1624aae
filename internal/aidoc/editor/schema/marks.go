package schema

import "net/url"

// applyMarks применяет форматирование (marks) к текстовому элементу.
// Неизвестный тип mark является нарушением схемы.
func applyMarks(text *Text, marks []wireMark) error {
	for _, mark := range marks {
		switch mark.Type {
		case "bold":
			text.Strong = true
		case "italic":
			text.Italic = true
		case "underline":
			text.Underlined = true
		case "strike":
			text.Strikethrough = true
		case "link":
			applyLink(text, mark.Attrs)
		default:
			return violation(ViolationUnknownMarkType, mark.Type)
		}
	}
	return nil
}

// applyLink применяет ссылку к тексту.
func applyLink(text *Text, attrs map[string]interface{}) {
	href := getAttrString(attrs, "href")
	if href != "" {
		u, err := url.Parse(href)
		if err == nil {
			text.URL = u
		}
	}
}
