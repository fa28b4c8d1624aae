package session

import (
	"context"
	"sync"
	"time"
)

// Registry держит по одной живой сессии на открытый документ в рамках
// процесса. Повторное открытие возвращает существующую сессию.
type Registry struct {
	store    Store
	interval time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store Store, interval time.Duration) *Registry {
	return &Registry{
		store:    store,
		interval: interval,
		sessions: make(map[string]*Session),
	}
}

// Acquire возвращает живую сессию документа или открывает новую с запущенным
// автосохранением.
func (r *Registry) Acquire(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	s, err := Open(ctx, r.store, id, r.interval)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Параллельный Acquire мог успеть первым
	if existing, ok := r.sessions[id]; ok {
		s.Close()
		return existing, nil
	}

	s.Start()
	r.sessions[id] = s
	return s, nil
}

// Get возвращает живую сессию, не открывая новую.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Release закрывает сессию документа и удаляет ее из реестра.
// Выполняющееся сохранение дорабатывает до конца.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// CloseAll закрывает все сессии. Вызывается при остановке сервера.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
