package schema

// parseText преобразует текстовую wire ноду в Text.
func parseText(node wireNode) (Text, error) {
	text := Text{
		Content: node.Text,
	}

	if len(node.Marks) > 0 {
		if err := applyMarks(&text, node.Marks); err != nil {
			return text, err
		}
	}

	return text, nil
}

// parseParagraph преобразует wire параграф в Paragraph.
func parseParagraph(node wireNode) (*Paragraph, error) {
	p := &Paragraph{
		Content: make([]any, 0, len(node.Content)),
	}

	for _, child := range node.Content {
		elem, err := parseInlineNode(child)
		if err != nil {
			return nil, err
		}
		p.Content = append(p.Content, elem)
	}

	return p, nil
}

// parseHeading преобразует wire заголовок в Heading.
// Уровень вне диапазона 1..3 является нарушением схемы.
func parseHeading(node wireNode) (*Heading, error) {
	level := getAttrInt(node.Attrs, "level")
	if level < 1 || level > 3 {
		return nil, violation(ViolationInvalidLevel, node.Type)
	}

	h := &Heading{
		Level:   level,
		Content: make([]any, 0, len(node.Content)),
	}

	for _, child := range node.Content {
		elem, err := parseInlineNode(child)
		if err != nil {
			return nil, err
		}
		h.Content = append(h.Content, elem)
	}

	return h, nil
}

// parseList преобразует wire список в List.
func parseList(node wireNode) (*List, error) {
	list := &List{
		Elements: make([]ListItem, 0, len(node.Content)),
		Numbered: node.Type == "orderedList",
	}

	for _, child := range node.Content {
		if child.Type != "listItem" {
			return nil, violation(ViolationUnknownNodeType, child.Type)
		}
		item, err := parseListItem(child)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, *item)
	}

	return list, nil
}

// parseListItem преобразует wire элемент списка в ListItem.
// Содержимым элемента списка могут быть только параграфы.
func parseListItem(node wireNode) (*ListItem, error) {
	item := &ListItem{
		Content: make([]Paragraph, 0, len(node.Content)),
	}

	for _, child := range node.Content {
		if child.Type != "paragraph" {
			return nil, violation(ViolationBlockAtInline, child.Type)
		}
		p, err := parseParagraph(child)
		if err != nil {
			return nil, err
		}
		item.Content = append(item.Content, *p)
	}

	return item, nil
}

// parseImage преобразует wire изображение в Image.
// Пропущенные атрибуты получают значения по умолчанию, обрезка каждой стороны
// ограничивается диапазоном [CropMin, CropMax].
func parseImage(node wireNode) (*Image, error) {
	img := &Image{
		Src:   getAttrString(node.Attrs, "src"),
		Alt:   getAttrString(node.Attrs, "alt"),
		Title: getAttrString(node.Attrs, "title"),

		Width:  getAttrString(node.Attrs, "width"),
		Height: getAttrString(node.Attrs, "height"),

		CropTop:    clampCrop(getAttrInt(node.Attrs, "cropTop")),
		CropRight:  clampCrop(getAttrInt(node.Attrs, "cropRight")),
		CropBottom: clampCrop(getAttrInt(node.Attrs, "cropBottom")),
		CropLeft:   clampCrop(getAttrInt(node.Attrs, "cropLeft")),
	}

	if img.Width == "" {
		img.Width = DefaultImageWidth
	}
	if img.Height == "" {
		img.Height = DefaultImageHeight
	}

	return img, nil
}

// parseVideo преобразует wire видео в Video.
func parseVideo(node wireNode) (*Video, error) {
	return &Video{
		Src: getAttrString(node.Attrs, "src"),
	}, nil
}

// parseFileLink преобразует wire файловую ссылку в FileLink.
func parseFileLink(node wireNode) (*FileLink, error) {
	fl := &FileLink{
		Href:        getAttrString(node.Attrs, "href"),
		Target:      getAttrString(node.Attrs, "target"),
		DisplayName: getAttrString(node.Attrs, "displayName"),
	}

	if fl.Target == "" {
		fl.Target = DefaultLinkTarget
	}

	return fl, nil
}
