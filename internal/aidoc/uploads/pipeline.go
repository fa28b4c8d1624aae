// Пакет uploads реализует конвейер загрузки пользовательских файлов в
// объектное хранилище: генерацию устойчивых к коллизиям ключей, построение
// публичных URL, миниатюры растровых изображений и трекер состояний загрузок
// для индикации в интерфейсе.
package uploads

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/nfnt/resize"

	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
)

const (
	// Префикс всех пользовательских загрузок в хранилище.
	Prefix = "uploads/"

	// Префикс миниатюр растровых изображений.
	ThumbsPrefix = "uploads/thumbs/"

	tokenLength    = 12
	thumbnailWidth = 320
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Result - успешный результат загрузки.
type Result struct {
	Key          string `json:"key"`
	PublicURL    string `json:"public_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type Pipeline struct {
	storage filestorage.FileStorage
}

func NewPipeline(storage filestorage.FileStorage) *Pipeline {
	return &Pipeline{storage: storage}
}

// Upload сохраняет файл под новым уникальным ключом и возвращает публичный URL.
// Для растровых изображений дополнительно строится миниатюра; сбой построения
// миниатюры не прерывает загрузку. Любой сбой записи возвращается как
// *UploadError с типизированной причиной, никаких частичных результатов.
func (p *Pipeline) Upload(ctx context.Context, reader io.Reader, size int64, filename string, contentType string, metadata *filestorage.Metadata) (*Result, error) {
	key := NewKey(filename)

	var thumbSource []byte
	if isRasterImage(contentType) {
		// Изображение читается в память, чтобы из того же содержимого
		// построить миниатюру
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, classify(err)
		}
		reader = bytes.NewReader(data)
		size = int64(len(data))
		thumbSource = data
	}

	if err := p.storage.SaveReader(ctx, key, reader, size, contentType, metadata); err != nil {
		return nil, classify(err)
	}

	result := &Result{
		Key:       key,
		PublicURL: p.storage.PublicURL(key),
	}

	if thumbSource != nil {
		thumbKey, err := p.saveThumbnail(ctx, key, thumbSource, contentType, metadata)
		if err != nil {
			slog.Warn("Save upload thumbnail", "key", key, "err", err)
		} else {
			result.ThumbnailURL = p.storage.PublicURL(thumbKey)
		}
	}

	return result, nil
}

// saveThumbnail строит миниатюру шириной thumbnailWidth и сохраняет ее под ThumbsPrefix.
func (p *Pipeline) saveThumbnail(ctx context.Context, key string, data []byte, contentType string, metadata *filestorage.Metadata) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, thumb)
	case "gif":
		err = gif.Encode(&buf, thumb, nil)
	default:
		err = jpeg.Encode(&buf, thumb, nil)
	}
	if err != nil {
		return "", err
	}

	thumbKey := ThumbsPrefix + path.Base(key)
	if err := p.storage.SaveReader(ctx, thumbKey, &buf, int64(buf.Len()), contentType, metadata); err != nil {
		return "", err
	}

	return thumbKey, nil
}

// NewKey строит устойчивый к коллизиям ключ хранения:
// uploads/<случайный токен>_<unix millis>.<исходное имя файла>.
func NewKey(filename string) string {
	if filename == "" {
		filename = "file"
	}
	return fmt.Sprintf("%s%s_%d.%s", Prefix, randomToken(tokenLength), time.Now().UnixMilli(), filename)
}

func randomToken(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	for i := range b {
		b[i] = base36[int(b[i])%len(base36)]
	}
	return string(b)
}

func isRasterImage(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg", "image/gif":
		return true
	}
	return false
}
