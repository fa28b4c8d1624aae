// Пакет schema описывает модель структурированного документа: закрытый набор
// типизированных нод (параграфы, заголовки, списки, изображения, видео,
// файловые ссылки, текст) и кодек для их сериализации в JSON дерево нод.
//
// Основные возможности:
//   - Типизированные структуры нод с значениями атрибутов по умолчанию.
//   - Строгий парсинг JSON: неизвестные типы нод и неверное размещение
//     inline/block нод отклоняются ошибкой SchemaError целиком, без частичного
//     применения дерева.
//   - Сериализация с гарантией round-trip: Parse(Serialize(doc)) == doc.
//   - Импорт легаси HTML контента.
//   - Хранение документа в PostgreSQL JSONB колонке через GORM.
package schema

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// Минимальное и максимальное значение обрезки одной стороны изображения в процентах.
	CropMin = 0
	CropMax = 45

	DefaultImageWidth  = "100%"
	DefaultImageHeight = "auto"
	DefaultLinkTarget  = "_blank"
)

type Document struct {
	Elements []any
}

type Paragraph struct {
	Content []any
}

type Heading struct {
	Level   int
	Content []any
}

type ListItem struct {
	Content []Paragraph
}

type List struct {
	Elements []ListItem
	Numbered bool
}

// Image - атомарная блочная нода изображения. Обрезка сторон хранится в
// процентах видимой области и не затрагивает исходные байты изображения.
type Image struct {
	Src   string
	Alt   string
	Title string

	Width  string
	Height string

	CropTop    int
	CropRight  int
	CropBottom int
	CropLeft   int
}

type Video struct {
	Src string
}

// FileLink - атомарная inline нода загруженного файла. Удаляется целиком
// одним backspace, частичное удаление содержимого невозможно.
type FileLink struct {
	Href        string
	Target      string
	DisplayName string
}

type Text struct {
	Content string

	Strong        bool
	Italic        bool
	Underlined    bool
	Strikethrough bool

	URL *url.URL
}

type HardBreak struct {
	// Пустая структура для представления переноса строки <br>
}

// NewImage создает ноду изображения с атрибутами по умолчанию.
func NewImage(src string) *Image {
	return &Image{
		Src:    src,
		Width:  DefaultImageWidth,
		Height: DefaultImageHeight,
	}
}

// NewFileLink создает ноду файловой ссылки с target по умолчанию.
func NewFileLink(href string, displayName string) *FileLink {
	return &FileLink{
		Href:        href,
		Target:      DefaultLinkTarget,
		DisplayName: displayName,
	}
}

// IsEmpty сообщает, что документ не содержит ни текста, ни атомарных нод.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	empty := true
	walkInline(d.Elements, func(elem any) {
		switch e := elem.(type) {
		case Text:
			if strings.TrimSpace(e.Content) != "" {
				empty = false
			}
		case *Image, *Video, *FileLink:
			empty = false
		}
	})
	return empty
}

// WordCount подсчитывает количество слов во всем текстовом содержимом
// документа. Словом считается последовательность символов, разделенная
// пробелами, разметка не учитывается.
func (d *Document) WordCount() int {
	if d == nil {
		return 0
	}
	var count int
	walkInline(d.Elements, func(elem any) {
		if t, ok := elem.(Text); ok {
			count += len(strings.Fields(t.Content))
		}
	})
	return count
}

// walkInline обходит inline содержимое всех блочных нод дерева.
func walkInline(elements []any, f func(elem any)) {
	for _, elem := range elements {
		switch e := elem.(type) {
		case *Paragraph:
			for _, c := range e.Content {
				f(c)
			}
		case *Heading:
			for _, c := range e.Content {
				f(c)
			}
		case *List:
			for _, item := range e.Elements {
				for _, p := range item.Content {
					for _, c := range p.Content {
						f(c)
					}
				}
			}
		case *Image, *Video:
			f(e)
		}
	}
}

// Value реализует интерфейс driver.Valuer для сохранения Document в PostgreSQL JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует интерфейс sql.Scanner для чтения Document из PostgreSQL JSONB.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{Elements: make([]any, 0)}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return d.UnmarshalJSON(raw)
}

// GormDataType указывает GORM использовать тип JSONB для PostgreSQL колонок.
func (Document) GormDataType() string {
	return "jsonb"
}
