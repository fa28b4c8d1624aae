package uploads

import (
	"sync"

	"github.com/gofrs/uuid"
)

// State - стадия загрузки для индикации в интерфейсе.
type State int

const (
	StateUnknown State = iota
	StatePending
	StateSucceeded
	StateFailed
)

// Status - текущее состояние одной загрузки.
type Status struct {
	State  State
	Result *Result
	Err    *UploadError
}

// Tracker отслеживает переходы pending/success/failure загрузок по
// непрозрачному идентификатору запроса. Потокобезопасен.
type Tracker struct {
	mu       sync.Mutex
	statuses map[string]Status
}

func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]Status)}
}

// Begin регистрирует новую загрузку и возвращает ее идентификатор.
func (t *Tracker) Begin() string {
	id := uuid.Must(uuid.NewV4()).String()

	t.mu.Lock()
	t.statuses[id] = Status{State: StatePending}
	t.mu.Unlock()

	return id
}

// Resolve помечает загрузку успешной.
func (t *Tracker) Resolve(id string, result *Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.statuses[id]; !ok {
		return
	}
	t.statuses[id] = Status{State: StateSucceeded, Result: result}
}

// Fail помечает загрузку неудавшейся.
func (t *Tracker) Fail(id string, err *UploadError) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.statuses[id]; !ok {
		return
	}
	t.statuses[id] = Status{State: StateFailed, Err: err}
}

// Status возвращает состояние загрузки. Для неизвестного идентификатора
// возвращается StateUnknown.
func (t *Tracker) Status(id string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.statuses[id]
}

// Forget удаляет завершенную загрузку из трекера.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.statuses, id)
}
