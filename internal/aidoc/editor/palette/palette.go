// Пакет palette реализует машину состояний палитры slash-команд: открытие по
// триггерному символу в начале блока, фильтрацию каталога по запросу,
// циклическую навигацию клавишами и применение выбранной команды к редактору
// через командный интерфейс.
package palette

import (
	"context"
	"errors"
	"io"
	"strings"

	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
	"github.com/aisa-it/aidoc/internal/aidoc/uploads"
)

// Trigger - символ, открывающий палитру в начале блока.
const Trigger = '/'

var (
	ErrClosed       = errors.New("palette is closed")
	ErrFileRequired = errors.New("command requires a file")
	ErrURLRequired  = errors.New("command requires a video url")
)

// Editor - командный интерфейс активной сессии редактора.
// Палитра мутирует дерево документа только через него.
type Editor interface {
	DeleteRange(r Range)
	SetParagraph()
	SetHeading(level int)
	ToggleBulletList()
	ToggleOrderedList()
	InsertImage(src string)
	InsertVideo(src string)
	InsertFileLink(href string, displayName string)
}

// Uploader - конвейер загрузки, от которого зависят команды Image и File.
// Реализуется uploads.Pipeline.
type Uploader interface {
	Upload(ctx context.Context, reader io.Reader, size int64, filename string, contentType string, metadata *filestorage.Metadata) (*uploads.Result, error)
}

// Range - диапазон документа с триггерным символом и текстом запроса,
// удаляемый перед применением команды.
type Range struct {
	From int
	To   int
}

// File - выбранный пользователем файл для команд загрузки.
type File struct {
	Reader      io.Reader
	Size        int64
	Name        string
	ContentType string
}

// Input - внешние данные для команд, которым они нужны.
type Input struct {
	File     *File
	VideoURL string
}

// Palette - машина состояний Closed <-> Open{query, selectedIndex}.
// Не потокобезопасна: рассчитана на однопоточный событийный цикл.
type Palette struct {
	uploader Uploader
	tracker  *uploads.Tracker

	open          bool
	query         string
	selectedIndex int
}

func New(uploader Uploader, tracker *uploads.Tracker) *Palette {
	return &Palette{uploader: uploader, tracker: tracker}
}

func (p *Palette) IsOpen() bool { return p.open }

func (p *Palette) Query() string { return p.query }

func (p *Palette) SelectedIndex() int { return p.selectedIndex }

// HandleTrigger открывает палитру, если триггер введен в валидной позиции
// начала блока. Возвращает true, если палитра открылась.
func (p *Palette) HandleTrigger(blockStart bool) bool {
	if p.open || !blockStart {
		return false
	}
	p.open = true
	p.query = ""
	p.selectedIndex = 0
	return true
}

// SetQuery обновляет строку запроса. Выбранная позиция сбрасывается на первый
// элемент при каждом изменении запроса.
func (p *Palette) SetQuery(query string) {
	if !p.open {
		return
	}
	if p.query != query {
		p.query = query
		p.selectedIndex = 0
	}
}

// Filtered возвращает элементы каталога, чей заголовок содержит запрос без
// учета регистра, в объявленном порядке каталога.
func (p *Palette) Filtered() []Item {
	if !p.open {
		return nil
	}

	query := strings.ToLower(p.query)
	items := make([]Item, 0, len(catalog))
	for _, item := range catalog {
		if strings.Contains(strings.ToLower(item.Title), query) {
			items = append(items, item)
		}
	}
	return items
}

// MoveUp переводит выбор на предыдущий элемент с переходом через край списка.
func (p *Palette) MoveUp() {
	n := len(p.Filtered())
	if n == 0 {
		return
	}
	p.selectedIndex = (p.selectedIndex + n - 1) % n
}

// MoveDown переводит выбор на следующий элемент с переходом через край списка.
func (p *Palette) MoveDown() {
	n := len(p.Filtered())
	if n == 0 {
		return
	}
	p.selectedIndex = (p.selectedIndex + 1) % n
}

// Selected возвращает выбранный элемент отфильтрованного списка.
func (p *Palette) Selected() (Item, bool) {
	items := p.Filtered()
	if len(items) == 0 || p.selectedIndex >= len(items) {
		return Item{}, false
	}
	return items[p.selectedIndex], true
}

// Cancel закрывает палитру без применения команды.
func (p *Palette) Cancel() {
	p.open = false
	p.query = ""
	p.selectedIndex = 0
}

// CheckContext проверяет, что текст блока все еще начинается с непрерывного
// "/<query>". При потере контекста палитра закрывается без применения.
func (p *Palette) CheckContext(blockText string) {
	if !p.open {
		return
	}
	if !strings.HasPrefix(blockText, string(Trigger)+p.query) {
		p.Cancel()
	}
}

// Apply применяет выбранный элемент: удаляет диапазон триггера с текстом
// запроса, затем исполняет эффект команды. Команды загрузки вставляют ноду
// только после успешного завершения загрузки; при сбое дерево документа
// остается без изменений, а сбой фиксируется в трекере загрузок.
func (p *Palette) Apply(ctx context.Context, ed Editor, r Range, input Input) error {
	if !p.open {
		return ErrClosed
	}

	item, ok := p.Selected()
	p.Cancel()
	if !ok {
		return nil
	}

	ed.DeleteRange(r)

	switch item.Kind {
	case KindText:
		ed.SetParagraph()
	case KindHeading1:
		ed.SetHeading(1)
	case KindHeading2:
		ed.SetHeading(2)
	case KindHeading3:
		ed.SetHeading(3)
	case KindBulletList:
		ed.ToggleBulletList()
	case KindOrderedList:
		ed.ToggleOrderedList()
	case KindVideo:
		if input.VideoURL == "" {
			return ErrURLRequired
		}
		ed.InsertVideo(input.VideoURL)
	case KindImage, KindFile:
		return p.applyUpload(ctx, ed, item.Kind, input.File)
	}

	return nil
}

func (p *Palette) applyUpload(ctx context.Context, ed Editor, kind Kind, file *File) error {
	if file == nil {
		return ErrFileRequired
	}

	id := p.tracker.Begin()

	result, err := p.uploader.Upload(ctx, file.Reader, file.Size, file.Name, file.ContentType, nil)
	if err != nil {
		var uploadErr *uploads.UploadError
		if !errors.As(err, &uploadErr) {
			uploadErr = &uploads.UploadError{Reason: uploads.ReasonUnknown, Cause: err}
		}
		// Сбой уходит в канал трекера, нода не вставляется
		p.tracker.Fail(id, uploadErr)
		return err
	}

	p.tracker.Resolve(id, result)

	if kind == KindImage {
		ed.InsertImage(result.PublicURL)
	} else {
		ed.InsertFileLink(result.PublicURL, uploads.DisplayName(result.Key))
	}

	return nil
}
