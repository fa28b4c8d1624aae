// Пакет предоставляет интерфейс и реализации для работы с файловым хранилищем, включая локальное хранилище и Minio. Он обеспечивает операции сохранения, загрузки, удаления и перечисления объектов, а также построение публичных URL.
package filestorage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrBucketNotExist возвращается, когда bucket объектного хранилища недоступен или удален.
var ErrBucketNotExist = errors.New("storage bucket does not exist")

type Metadata struct {
	WorkspaceId string
	DocId       string
	UserId      string
}

func (m Metadata) GetMap() map[string]string {
	meta := make(map[string]string)
	if m.WorkspaceId != "" {
		meta["workspaceId"] = m.WorkspaceId
	}
	if m.DocId != "" {
		meta["docId"] = m.DocId
	}
	if m.UserId != "" {
		meta["userId"] = m.UserId
	}
	return meta
}

type FileInfo struct {
	Key         string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

type FileStorage interface {
	SaveReader(ctx context.Context, key string, reader io.Reader, fileSize int64, contentType string, metadata *Metadata) error
	Load(ctx context.Context, key string) ([]byte, error)
	LoadReader(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exist(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string, fn func(FileInfo) error) error
	PublicURL(key string) string
}

type LocalStorage struct {
	rootDir string
	baseURL *url.URL
}

func NewLocalStorage(rootPath string, baseURL *url.URL) (FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, err
	}
	return &LocalStorage{rootDir: rootPath, baseURL: baseURL}, nil
}

func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(key))
}

func (s *LocalStorage) SaveReader(ctx context.Context, key string, reader io.Reader, fileSize int64, contentType string, metadata *Metadata) error {
	if err := os.MkdirAll(filepath.Dir(s.path(key)), 0755); err != nil {
		return err
	}
	f, err := os.Create(s.path(key))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, reader)
	return err
}

func (s *LocalStorage) Load(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

func (s *LocalStorage) LoadReader(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	return os.Remove(s.path(key))
}

func (s *LocalStorage) Exist(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) List(ctx context.Context, prefix string, fn func(FileInfo) error) error {
	root := s.path(prefix)
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootDir, p)
		if err != nil {
			return err
		}
		return fn(FileInfo{
			Key:       filepath.ToSlash(rel),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	})
}

func (s *LocalStorage) PublicURL(key string) string {
	u := *s.baseURL
	u.Path = path.Join(u.Path, "uploads-static", key)
	return u.String()
}

type MinioStorage struct {
	client     *minio.Client
	bucketName string
	baseURL    *url.URL
}

func NewMinioStorage(endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string, baseURL *url.URL) (FileStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, err
	}

	if !exists {
		// Create bucket if not exist
		if err := client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client: client, bucketName: bucketName, baseURL: baseURL}, nil
}

func (s *MinioStorage) SaveReader(ctx context.Context, key string, reader io.Reader, fileSize int64, contentType string, metadata *Metadata) error {
	putOptions := minio.PutObjectOptions{ContentType: contentType}
	if metadata != nil {
		putOptions.UserTags = metadata.GetMap()
	}

	_, err := s.client.PutObject(ctx, s.bucketName, key, reader, fileSize, putOptions)
	return wrapBucketError(err)
}

func (s *MinioStorage) Load(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.LoadReader(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

func (s *MinioStorage) LoadReader(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{})
}

func (s *MinioStorage) Exist(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, wrapBucketError(err)
	}
	return true, nil
}

func (s *MinioStorage) List(ctx context.Context, prefix string, fn func(info FileInfo) error) error {
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return wrapBucketError(obj.Err)
		}
		if err := fn(FileInfo{
			Key:         obj.Key,
			Size:        obj.Size,
			ContentType: obj.ContentType,
			CreatedAt:   obj.LastModified,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MinioStorage) PublicURL(key string) string {
	u := *s.baseURL
	u.Path = path.Join(u.Path, s.bucketName, key)
	return u.String()
}

// wrapBucketError преобразует ответ minio про отсутствующий bucket в сентинел ErrBucketNotExist.
func wrapBucketError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchBucket" || strings.Contains(strings.ToLower(resp.Message), "bucket") && resp.Code == "NotFound" {
		return ErrBucketNotExist
	}
	return err
}
