// Пакет session реализует контроллер сессии редактирования документа:
// хранение редактируемых заголовка и дерева, вычисление dirty состояния,
// периодическое автосохранение с отменяемой фоновой задачей и защиту от
// параллельных сохранений одного документа.
package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
)

// DefaultAutosaveInterval - интервал автосохранения по умолчанию.
const DefaultAutosaveInterval = 30 * time.Second

var (
	ErrNotFound = errors.New("document not found")
	ErrClosed   = errors.New("editor session is closed")
)

// StoredDocument - документ, загруженный из хранилища.
type StoredDocument struct {
	ID             string
	Title          string
	Body           *schema.Document
	SourceLanguage string
	WorkspaceID    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Update - полезная нагрузка сохранения. Запись идемпотентна: всегда полная
// перезапись документа, последняя запись выигрывает. Body отвязан от живого
// дерева сессии, хранилище может читать его без блокировки.
type Update struct {
	Title string
	Body  *schema.Document
}

// Store - интерфейс персистентности, потребляемый сессией.
type Store interface {
	LoadDocument(ctx context.Context, id string) (*StoredDocument, error)
	SaveDocument(ctx context.Context, id string, upd Update) error
}

// Session - транзитное состояние одного открытого документа. Создается при
// открытии, уничтожается при закрытии редактора. Не разделяется между
// сессиями: конкурентные редакторы одного документа разрешаются политикой
// последней записи на уровне хранилища.
type Session struct {
	id    string
	store Store

	mu    sync.Mutex
	title string
	body  *schema.Document

	lastSavedTitle string
	lastSavedBody  []byte
	lastSavedAt    time.Time

	saving bool
	closed bool

	cursor int

	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
}

// Open загружает документ и создает сессию. Автосохранение запускается
// отдельным вызовом Start.
func Open(ctx context.Context, store Store, id string, interval time.Duration) (*Session, error) {
	doc, err := store.LoadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}

	body := doc.Body
	if body == nil {
		body = &schema.Document{Elements: make([]any, 0)}
	}

	serialized, err := schema.Serialize(body)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:    id,
		store: store,

		title: doc.Title,
		body:  body,

		lastSavedTitle: doc.Title,
		lastSavedBody:  serialized,
		lastSavedAt:    doc.UpdatedAt,

		interval: interval,
		done:     make(chan struct{}),
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// Saving сообщает, что сохранение уже выполняется. Интерфейс использует это
// для блокировки кнопки сохранения на время запроса.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// SetTitle изменяет заголовок документа.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// ApplyEdit выполняет мутацию дерева под блокировкой сессии.
func (s *Session) ApplyEdit(edit func(body *schema.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edit(s.body)
}

// Snapshot возвращает сериализованное текущее состояние документа.
func (s *Session) Snapshot() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	serialized, err := schema.Serialize(s.body)
	return s.title, serialized, err
}

// Dirty пересчитывает наличие несохраненных правок: заголовок или
// сериализованное дерево отличаются от последнего успешного сохранения.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	if s.title != s.lastSavedTitle {
		return true
	}
	serialized, err := schema.Serialize(s.body)
	if err != nil {
		return true
	}
	return !bytes.Equal(serialized, s.lastSavedBody)
}

// Start запускает периодическую задачу автосохранения на время жизни сессии.
func (s *Session) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Save(context.Background()); err != nil {
					// dirty остается, повтор на следующем тике
					slog.Error("Autosave document", "docId", s.id, "err", err)
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Save сохраняет документ, если есть несохраненные правки. Одновременно
// выполняется не больше одного сохранения: повторный вызов во время
// выполняющегося сохранения пропускается, а не ставится в очередь.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.saving || !s.dirtyLocked() {
		s.mu.Unlock()
		return nil
	}

	s.saving = true
	title := s.title
	serialized, err := schema.Serialize(s.body)
	s.mu.Unlock()

	if err != nil {
		s.finishSave(false, "", nil)
		return err
	}

	// В хранилище уходит копия дерева: живое дерево продолжает меняться
	// через ApplyEdit, пока запись выполняется
	detached, err := schema.ParseJSON(bytes.NewReader(serialized))
	if err != nil {
		s.finishSave(false, "", nil)
		return err
	}

	err = s.store.SaveDocument(ctx, s.id, Update{Title: title, Body: detached})
	if err != nil {
		s.finishSave(false, "", nil)
		return err
	}

	s.finishSave(true, title, serialized)
	return nil
}

func (s *Session) finishSave(ok bool, title string, serialized []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = false
	if ok {
		s.lastSavedTitle = title
		s.lastSavedBody = serialized
		s.lastSavedAt = time.Now()
	}
}

// Close останавливает автосохранение и закрывает сессию. Выполняющееся
// сохранение дорабатывает до конца, его результат игнорируется.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
}
