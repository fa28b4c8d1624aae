package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
)

// fakeStorage - хранилище в памяти для тестов конвейера.
type fakeStorage struct {
	objects map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) SaveReader(ctx context.Context, key string, reader io.Reader, fileSize int64, contentType string, metadata *filestorage.Metadata) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (s *fakeStorage) LoadReader(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Exist(ctx context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) List(ctx context.Context, prefix string, fn func(filestorage.FileInfo) error) error {
	for key, data := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := fn(filestorage.FileInfo{Key: key, Size: int64(len(data))}); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestUploadKeyShape(t *testing.T) {
	storage := newFakeStorage()
	p := NewPipeline(storage)

	result, err := p.Upload(context.Background(), strings.NewReader("hello"), 5, "my report.pdf", "application/pdf", nil)
	require.NoError(t, err)

	keyShape := regexp.MustCompile(`^uploads/[0-9a-z]{12}_[0-9]{13}\.my report\.pdf$`)
	assert.Regexp(t, keyShape, result.Key)
	assert.Equal(t, "https://cdn.example.com/"+result.Key, result.PublicURL)
	assert.Empty(t, result.ThumbnailURL)

	stored, ok := storage.objects[result.Key]
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), stored)
}

func TestUploadKeysUnique(t *testing.T) {
	storage := newFakeStorage()
	p := NewPipeline(storage)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		result, err := p.Upload(context.Background(), strings.NewReader("x"), 1, "a.txt", "text/plain", nil)
		require.NoError(t, err)
		require.False(t, seen[result.Key], "duplicate key %s", result.Key)
		seen[result.Key] = true
	}
}

func TestUploadImageThumbnail(t *testing.T) {
	storage := newFakeStorage()
	p := NewPipeline(storage)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480))))

	result, err := p.Upload(context.Background(), &buf, int64(buf.Len()), "pic.png", "image/png", nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.ThumbnailURL)

	thumbKey := strings.TrimPrefix(result.ThumbnailURL, "https://cdn.example.com/")
	thumbData, ok := storage.objects[thumbKey]
	require.True(t, ok, "thumbnail not stored")

	thumb, err := png.Decode(bytes.NewReader(thumbData))
	require.NoError(t, err)
	assert.Equal(t, 320, thumb.Bounds().Dx())
}

func TestUploadErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{name: "bucket missing", err: filestorage.ErrBucketNotExist, want: ReasonBucketMissing},
		{name: "network", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: ReasonNetwork},
		{name: "unknown", err: fmt.Errorf("boom"), want: ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newFakeStorage()
			storage.saveErr = tt.err
			p := NewPipeline(storage)

			_, err := p.Upload(context.Background(), strings.NewReader("x"), 1, "a.txt", "text/plain", nil)

			var uploadErr *UploadError
			require.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.want, uploadErr.Reason)

			// Сбой не оставляет частичных результатов
			assert.Empty(t, storage.objects)
		})
	}
}

func TestTrackerTransitions(t *testing.T) {
	tracker := NewTracker()

	id := tracker.Begin()
	assert.Equal(t, StatePending, tracker.Status(id).State)

	tracker.Resolve(id, &Result{Key: "uploads/x", PublicURL: "https://cdn.example.com/uploads/x"})
	status := tracker.Status(id)
	assert.Equal(t, StateSucceeded, status.State)
	require.NotNil(t, status.Result)
	assert.Equal(t, "uploads/x", status.Result.Key)

	failed := tracker.Begin()
	tracker.Fail(failed, &UploadError{Reason: ReasonNetwork})
	assert.Equal(t, StateFailed, tracker.Status(failed).State)

	assert.Equal(t, StateUnknown, tracker.Status("missing").State)

	tracker.Forget(id)
	assert.Equal(t, StateUnknown, tracker.Status(id).State)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "stored key",
			input: "a1b2c3_1699999999999.my report.pdf",
			want:  "my report.pdf",
		},
		{
			name:  "full url",
			input: "https://cdn.example.com/uploads/q3f8xk7p2m1a_1699999999999.summary.pdf",
			want:  "summary.pdf",
		},
		{
			name:  "url with query",
			input: "https://cdn.example.com/uploads/q3f8xk7p2m1a_1699999999999.summary.pdf?v=2",
			want:  "summary.pdf",
		},
		{
			name:  "no uniqueness prefix",
			input: "uploads/plain.txt",
			want:  "plain.txt",
		},
		{
			name:  "empty remainder falls back",
			input: "uploads/a1b2c3_1699999999999.",
			want:  "file",
		},
		{
			name:  "empty input falls back",
			input: "",
			want:  "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.input))
		})
	}
}
