// Пакет для фоновой очистки объектного хранилища. Обнаруживает объекты под
// префиксом загрузок, для которых нет учетной записи в базе данных, и удаляет
// их.
//
// Основные возможности:
//   - Обход объектов хранилища по префиксу загрузок.
//   - Удаление объектов без соответствующей записи FileAsset.
package maintenance

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/dao"
	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
	"github.com/aisa-it/aidoc/internal/aidoc/uploads"
)

// Объекты моложе этого возраста не трогаем: загрузка могла еще не успеть
// получить запись в базе.
const minOrphanAge = time.Hour

type UploadsCleaner struct {
	db *gorm.DB
	si filestorage.FileStorage
}

func NewUploadsCleaner(db *gorm.DB, si filestorage.FileStorage) *UploadsCleaner {
	return &UploadsCleaner{db, si}
}

// CleanOrphans удаляет объекты под префиксом загрузок, не учтенные в базе.
func (uc *UploadsCleaner) CleanOrphans() {
	slog.Info("Start uploads cleaning")
	ctx := context.Background()

	var removed int
	if err := uc.si.List(ctx, uploads.Prefix, func(fi filestorage.FileInfo) error {
		if time.Since(fi.CreatedAt) < minOrphanAge {
			return nil
		}

		// Миниатюры учитываются по ключу основного объекта.
		key := fi.Key
		if strings.HasPrefix(key, uploads.ThumbsPrefix) {
			key = uploads.Prefix + path.Base(key)
		}

		var exist bool
		if err := uc.db.
			Where("key = ?", key).
			Select("count(*) > 0").
			Model(&dao.FileAsset{}).
			Find(&exist).Error; err != nil {
			return err
		}
		if exist {
			return nil
		}

		if err := uc.si.Delete(ctx, fi.Key); err != nil {
			return err
		}
		removed++
		return nil
	}); err != nil {
		slog.Error("Clean uploads fail", "err", err)
	}
	slog.Info("Finish uploads cleaning", "removed", removed)
}
