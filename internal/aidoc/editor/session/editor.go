package session

import (
	"github.com/aisa-it/aidoc/internal/aidoc/editor/palette"
	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
)

// Session реализует командный интерфейс palette.Editor: команды палитры
// мутируют дерево прямым вызовом методов активной сессии, без глобального
// канала событий. Текущий блок задается курсором.

// SetCursor устанавливает индекс текущего блока.
func (s *Session) SetCursor(block int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if block < 0 {
		block = 0
	}
	s.cursor = block
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// DeleteRange удаляет из текущего блока набранный текст триггера и запроса.
func (s *Session) DeleteRange(r palette.Range) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch block := s.currentBlock().(type) {
	case *schema.Paragraph:
		block.Content = deleteTextRange(block.Content, r)
	case *schema.Heading:
		block.Content = deleteTextRange(block.Content, r)
	}
}

// SetParagraph превращает текущий блок в параграф.
func (s *Session) SetParagraph() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch block := s.currentBlock().(type) {
	case *schema.Heading:
		s.replaceCurrent(&schema.Paragraph{Content: block.Content})
	case *schema.List:
		s.replaceCurrent(flattenList(block))
	}
}

// SetHeading превращает текущий блок в заголовок уровня level.
func (s *Session) SetHeading(level int) {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch block := s.currentBlock().(type) {
	case *schema.Paragraph:
		s.replaceCurrent(&schema.Heading{Level: level, Content: block.Content})
	case *schema.Heading:
		block.Level = level
	}
}

// ToggleBulletList оборачивает текущий параграф в маркированный список или
// разворачивает такой список обратно в параграфы.
func (s *Session) ToggleBulletList() {
	s.toggleList(false)
}

// ToggleOrderedList оборачивает текущий параграф в нумерованный список или
// разворачивает такой список обратно в параграфы.
func (s *Session) ToggleOrderedList() {
	s.toggleList(true)
}

func (s *Session) toggleList(numbered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch block := s.currentBlock().(type) {
	case *schema.Paragraph:
		s.replaceCurrent(&schema.List{
			Numbered: numbered,
			Elements: []schema.ListItem{{Content: []schema.Paragraph{*block}}},
		})
	case *schema.List:
		if block.Numbered == numbered {
			s.replaceCurrent(flattenList(block))
		} else {
			block.Numbered = numbered
		}
	}
}

// InsertImage вставляет ноду изображения после текущего блока.
func (s *Session) InsertImage(src string) {
	s.insertBlock(schema.NewImage(src))
}

// InsertVideo вставляет ноду видео после текущего блока.
func (s *Session) InsertVideo(src string) {
	s.insertBlock(&schema.Video{Src: src})
}

// InsertFileLink добавляет inline файловую ссылку в текущий параграф.
func (s *Session) InsertFileLink(href string, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch block := s.currentBlock().(type) {
	case *schema.Paragraph:
		block.Content = append(block.Content, schema.NewFileLink(href, displayName))
	default:
		p := &schema.Paragraph{Content: []any{schema.NewFileLink(href, displayName)}}
		s.insertBlockLocked(p)
	}
}

func (s *Session) insertBlock(block any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertBlockLocked(block)
}

func (s *Session) insertBlockLocked(block any) {
	at := s.cursor + 1
	if at > len(s.body.Elements) {
		at = len(s.body.Elements)
	}

	s.body.Elements = append(s.body.Elements, nil)
	copy(s.body.Elements[at+1:], s.body.Elements[at:])
	s.body.Elements[at] = block
	s.cursor = at
}

func (s *Session) currentBlock() any {
	if s.cursor < 0 || s.cursor >= len(s.body.Elements) {
		return nil
	}
	return s.body.Elements[s.cursor]
}

func (s *Session) replaceCurrent(block any) {
	if s.cursor < 0 || s.cursor >= len(s.body.Elements) {
		return
	}
	s.body.Elements[s.cursor] = block
}

// deleteTextRange удаляет r.To-r.From символов текста с начала inline
// содержимого блока (текст триггера и запроса набирается в начале блока).
func deleteTextRange(content []any, r palette.Range) []any {
	remain := r.To - r.From
	if remain <= 0 {
		return content
	}

	result := make([]any, 0, len(content))
	for _, elem := range content {
		text, ok := elem.(schema.Text)
		if !ok || remain == 0 {
			result = append(result, elem)
			continue
		}

		runes := []rune(text.Content)
		if len(runes) <= remain {
			remain -= len(runes)
			continue
		}

		text.Content = string(runes[remain:])
		remain = 0
		result = append(result, text)
	}
	return result
}

// flattenList разворачивает список в параграф из содержимого первого элемента.
func flattenList(list *schema.List) any {
	if len(list.Elements) == 0 || len(list.Elements[0].Content) == 0 {
		return &schema.Paragraph{Content: make([]any, 0)}
	}
	p := list.Elements[0].Content[0]
	return &p
}
