package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
)

// fakeStore - хранилище документов в памяти с управляемыми сбоями.
type fakeStore struct {
	mu        sync.Mutex
	docs      map[string]*StoredDocument
	saveCalls int
	saveErr   error
	blockSave chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*StoredDocument)}
}

func (s *fakeStore) put(id, title string, body *schema.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = &StoredDocument{ID: id, Title: title, Body: body, UpdatedAt: time.Now()}
}

func (s *fakeStore) LoadDocument(ctx context.Context, id string) (*StoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *fakeStore) SaveDocument(ctx context.Context, id string, upd Update) error {
	s.mu.Lock()
	block := s.blockSave
	s.saveCalls++
	err := s.saveErr
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = &StoredDocument{ID: id, Title: upd.Title, Body: upd.Body, UpdatedAt: time.Now()}
	return nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCalls
}

func emptyBody() *schema.Document {
	return &schema.Document{Elements: []any{&schema.Paragraph{Content: make([]any, 0)}}}
}

func openSession(t *testing.T, store *fakeStore) *Session {
	t.Helper()
	store.put("doc1", "Notes", emptyBody())
	s, err := Open(context.Background(), store, "doc1", time.Hour)
	require.NoError(t, err)
	return s
}

func TestOpenMissingDocument(t *testing.T) {
	_, err := Open(context.Background(), newFakeStore(), "missing", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirtyRecompute(t *testing.T) {
	s := openSession(t, newFakeStore())

	assert.False(t, s.Dirty())

	s.SetTitle("New title")
	assert.True(t, s.Dirty())

	s.SetTitle("Notes")
	assert.False(t, s.Dirty())

	s.ApplyEdit(func(body *schema.Document) {
		p := body.Elements[0].(*schema.Paragraph)
		p.Content = append(p.Content, schema.Text{Content: "hello"})
	})
	assert.True(t, s.Dirty())
}

func TestSaveClearsDirty(t *testing.T) {
	store := newFakeStore()
	s := openSession(t, store)

	s.SetTitle("Changed")
	require.NoError(t, s.Save(context.Background()))

	assert.False(t, s.Dirty())
	assert.Equal(t, 1, store.calls())

	// Повторное сохранение без правок не обращается к хранилищу
	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, 1, store.calls())
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	store := newFakeStore()
	s := openSession(t, store)
	store.saveErr = errors.New("connection reset")

	s.SetTitle("Changed")
	require.Error(t, s.Save(context.Background()))
	assert.True(t, s.Dirty())

	// Следующая попытка с тем же состоянием проходит после устранения сбоя
	store.saveErr = nil
	require.NoError(t, s.Save(context.Background()))
	assert.False(t, s.Dirty())
}

func TestConcurrentSavesCoalesced(t *testing.T) {
	store := newFakeStore()
	s := openSession(t, store)

	block := make(chan struct{})
	store.blockSave = block

	s.SetTitle("Changed")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Save(context.Background())
	}()

	// Дождаться входа первого сохранения в хранилище
	require.Eventually(t, func() bool { return s.Saving() }, time.Second, time.Millisecond)

	// Второй триггер во время выполняющегося сохранения пропускается
	require.NoError(t, s.Save(context.Background()))

	close(block)
	wg.Wait()

	assert.Equal(t, 1, store.calls())
}

func TestSaveDetachedFromLiveTree(t *testing.T) {
	store := newFakeStore()
	s := openSession(t, store)

	block := make(chan struct{})
	store.blockSave = block

	s.ApplyEdit(func(body *schema.Document) {
		p := body.Elements[0].(*schema.Paragraph)
		p.Content = append(p.Content, schema.Text{Content: "first"})
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Save(context.Background()))
	}()

	require.Eventually(t, func() bool { return s.Saving() }, time.Second, time.Millisecond)

	// Правка во время выполняющейся записи не попадает в нее
	s.ApplyEdit(func(body *schema.Document) {
		p := body.Elements[0].(*schema.Paragraph)
		p.Content = append(p.Content, schema.Text{Content: " second"})
	})

	close(block)
	wg.Wait()

	saved, err := store.LoadDocument(context.Background(), "doc1")
	require.NoError(t, err)
	serialized, err := schema.Serialize(saved.Body)
	require.NoError(t, err)
	assert.Contains(t, string(serialized), "first")
	assert.NotContains(t, string(serialized), "second")

	// Несохраненная правка остается в сессии
	assert.True(t, s.Dirty())
}

func TestAutosaveTick(t *testing.T) {
	store := newFakeStore()
	store.put("doc1", "Notes", emptyBody())

	s, err := Open(context.Background(), store, "doc1", 20*time.Millisecond)
	require.NoError(t, err)
	s.Start()
	defer s.Close()

	s.SetTitle("Changed")

	require.Eventually(t, func() bool { return store.calls() == 1 }, time.Second, 5*time.Millisecond)

	// Без новых правок тики не порождают сохранений
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, store.calls())
}

func TestCloseStopsAutosave(t *testing.T) {
	store := newFakeStore()
	store.put("doc1", "Notes", emptyBody())

	s, err := Open(context.Background(), store, "doc1", 10*time.Millisecond)
	require.NoError(t, err)
	s.Start()
	s.Close()

	s.SetTitle("Changed")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, store.calls())

	assert.ErrorIs(t, s.Save(context.Background()), ErrClosed)
}

func TestRegistryReusesLiveSession(t *testing.T) {
	store := newFakeStore()
	store.put("doc1", "Notes", emptyBody())

	r := NewRegistry(store, time.Hour)
	defer r.CloseAll()

	first, err := r.Acquire(context.Background(), "doc1")
	require.NoError(t, err)

	second, err := r.Acquire(context.Background(), "doc1")
	require.NoError(t, err)
	assert.Same(t, first, second)

	r.Release("doc1")
	_, ok := r.Get("doc1")
	assert.False(t, ok)

	third, err := r.Acquire(context.Background(), "doc1")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
