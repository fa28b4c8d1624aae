// DAO (Data Access Object) - предоставляет интерфейс для взаимодействия с базой данных.  Содержит модели пользователей, рабочих пространств, документов и файлов, а также функции доступа к данным приложения.
//
// Основные возможности:
//   - CRUD операции с пользователями, пространствами и документами.
//   - Хранение дерева документа в JSONB колонке.
//   - Учет загруженных файлов и их удаление из объектного хранилища.
package dao

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/config"
	"github.com/aisa-it/aidoc/internal/aidoc/dto"
	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
)

// GenID генерирует уникальный идентификатор в формате UUID.
// Не принимает параметров и возвращает строку, представляющую собой UUID.
func GenID() string {
	u2, _ := uuid.NewV4()
	return u2.String()
}

// GenUUID генерирует уникальный идентификатор в формате UUID. Не принимает параметров и возвращает UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

var Config *config.Config
var FileStorage filestorage.FileStorage

// FileAsset - учетная запись загруженного файла.
type FileAsset struct {
	Id          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedById *string   `json:"created_by,omitempty"`

	WorkspaceId *string       `json:"workspace,omitempty"`
	DocId       uuid.NullUUID `json:"doc" gorm:"type:uuid"`

	// Ключ объекта в хранилище
	Key string `json:"key" gorm:"uniqueIndex"`

	Name        string `json:"name" gorm:"index"`
	FileSize    int    `json:"size"`
	ContentType string `json:"content_type"`

	Workspace *Workspace `json:"-" gorm:"foreignKey:WorkspaceId"`
	Author    *User      `json:"-" gorm:"foreignKey:CreatedById"`
}

func (FileAsset) TableName() string { return "file_assets" }

func (asset *FileAsset) ToDTO() *dto.FileAsset {
	if asset == nil {
		return nil
	}
	return &dto.FileAsset{
		Id:          asset.Id,
		Name:        asset.Name,
		Key:         asset.Key,
		FileSize:    asset.FileSize,
		ContentType: asset.ContentType,
		CreatedAt:   asset.CreatedAt,
		URL:         FileStorage.PublicURL(asset.Key),
	}
}

// Удаляет объект из файлового хранилища перед удалением записи.
func (asset *FileAsset) BeforeDelete(tx *gorm.DB) error {
	exist, err := FileStorage.Exist(context.Background(), asset.Key)
	if err != nil {
		return err
	}

	if exist {
		if err := FileStorage.Delete(context.Background(), asset.Key); err != nil {
			return err
		}
	}
	return nil
}
