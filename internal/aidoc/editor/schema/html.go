package schema

import (
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML импортирует легаси HTML контент в Document.
// Поддерживаются параграфы, заголовки h1-h3, списки, изображения, файловые
// ссылки и базовое текстовое форматирование. В отличие от ParseJSON импорт
// нестрогий: неподдерживаемые элементы пропускаются.
func ParseHTML(r io.Reader) (*Document, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	document := &Document{Elements: make([]any, 0)}

	for el := getBody(rootNode).FirstChild; el != nil; el = el.NextSibling {
		if el.Type != html.ElementNode {
			continue
		}

		switch el.Data {
		case "p":
			if p := htmlParagraph(el); p != nil {
				document.Elements = append(document.Elements, p)
			}
		case "h1", "h2", "h3":
			level, _ := strconv.Atoi(strings.TrimPrefix(el.Data, "h"))
			h := &Heading{Level: level}
			if p := htmlInlineContent(el); p != nil {
				h.Content = p
			}
			document.Elements = append(document.Elements, h)
		case "ul", "ol":
			if list := htmlList(el); list != nil {
				document.Elements = append(document.Elements, list)
			}
		case "img":
			if img := htmlImage(el); img != nil {
				document.Elements = append(document.Elements, img)
			}
		case "iframe", "video":
			if src := getAttrValue("src", el.Attr); src != "" {
				document.Elements = append(document.Elements, &Video{Src: src})
			}
		}
	}

	return document, nil
}

func htmlParagraph(root *html.Node) *Paragraph {
	if root.Type != html.ElementNode || root.Data != "p" {
		return nil
	}
	return &Paragraph{Content: htmlInlineContent(root)}
}

func htmlInlineContent(root *html.Node) []any {
	content := make([]any, 0)

	for el := root.FirstChild; el != nil; el = el.NextSibling {
		if el.Type == html.ElementNode && el.Data == "br" {
			content = append(content, &HardBreak{})
			continue
		}

		if el.Type == html.ElementNode && el.Data == "img" {
			if img := htmlImage(el); img != nil {
				content = append(content, img)
			}
			continue
		}

		if el.Type == html.ElementNode && el.Data == "a" && getAttrValue("data-type", el.Attr) == "file-link" {
			content = append(content, &FileLink{
				Href:        getAttrValue("href", el.Attr),
				Target:      DefaultLinkTarget,
				DisplayName: textContent(el),
			})
			continue
		}

		if t := htmlText(el); t.Content != "" {
			content = append(content, t)
		}
	}

	return content
}

func htmlText(root *html.Node) Text {
	var text Text

	iterNodes(root, func(el *html.Node) bool {
		if el.Type == html.TextNode {
			text.Content = el.Data
			return true
		}
		switch el.Data {
		case "em", "i":
			text.Italic = true
		case "u":
			text.Underlined = true
		case "s", "del":
			text.Strikethrough = true
		case "strong", "b":
			text.Strong = true
		case "a":
			if u, err := url.Parse(getAttrValue("href", el.Attr)); err == nil {
				text.URL = u
			}
		}

		return false
	})

	return text
}

func htmlList(root *html.Node) *List {
	if root.Type != html.ElementNode || (root.Data != "ul" && root.Data != "ol") {
		return nil
	}
	list := &List{Numbered: root.Data == "ol"}

	for li := root.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		var item ListItem
		iterNodes(li, func(p *html.Node) bool {
			if paragraph := htmlParagraph(p); paragraph != nil {
				item.Content = append(item.Content, *paragraph)
				return true
			}
			return false
		})

		// li без вложенных параграфов трактуется как один параграф
		if len(item.Content) == 0 {
			item.Content = append(item.Content, Paragraph{Content: htmlInlineContent(li)})
		}

		list.Elements = append(list.Elements, item)
	}

	return list
}

func htmlImage(el *html.Node) *Image {
	if el.Type != html.ElementNode || el.Data != "img" {
		return nil
	}

	src := getAttrValue("src", el.Attr)
	if src == "" {
		return nil
	}

	img := NewImage(src)
	img.Alt = getAttrValue("alt", el.Attr)
	img.Title = getAttrValue("title", el.Attr)

	if width := getAttrValue("width", el.Attr); width != "" {
		img.Width = width
	}
	if height := getAttrValue("height", el.Attr); height != "" {
		img.Height = height
	}

	img.CropTop = clampCrop(attrInt("data-crop-top", el.Attr))
	img.CropRight = clampCrop(attrInt("data-crop-right", el.Attr))
	img.CropBottom = clampCrop(attrInt("data-crop-bottom", el.Attr))
	img.CropLeft = clampCrop(attrInt("data-crop-left", el.Attr))

	return img
}

func textContent(root *html.Node) string {
	var sb strings.Builder
	iterNodes(root, func(el *html.Node) bool {
		if el.Type == html.TextNode {
			sb.WriteString(el.Data)
		}
		return false
	})
	return strings.TrimSpace(sb.String())
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, "body")
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func attrInt(key string, attrs []html.Attribute) int {
	i, _ := strconv.Atoi(getAttrValue(key, attrs))
	return i
}
