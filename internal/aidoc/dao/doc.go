// DAO для работы с документами: модель с JSONB деревом контента и адаптер
// интерфейса персистентности сессии редактора.
package dao

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/dto"
	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
	"github.com/aisa-it/aidoc/internal/aidoc/editor/session"
)

// Документы
type Doc struct {
	ID        uuid.UUID      `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Title          string          `json:"title"`
	Content        schema.Document `json:"content" gorm:"type:jsonb"`
	SourceLanguage string          `json:"source_language" gorm:"default:'en'"`

	WorkspaceId uuid.UUID `json:"workspace_id" gorm:"type:uuid;index"`
	CreatedById uuid.UUID `json:"created_by_id" gorm:"type:uuid"`

	Workspace *Workspace `json:"-" gorm:"foreignKey:WorkspaceId"`
	Author    *User      `json:"author,omitempty" gorm:"foreignKey:CreatedById"`
}

func (Doc) TableName() string { return "docs" }

func (d *Doc) ToDTO() *dto.Doc {
	if d == nil {
		return nil
	}
	return &dto.Doc{
		ID:             d.ID,
		Title:          d.Title,
		SourceLanguage: d.SourceLanguage,
		WorkspaceId:    d.WorkspaceId,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		WordCount:      d.Content.WordCount(),
		Author:         d.Author.ToLightDTO(),
	}
}

// GetWorkspaceDocs возвращает документы пространства без содержимого.
func GetWorkspaceDocs(db *gorm.DB, workspaceID uuid.UUID) ([]Doc, error) {
	var docs []Doc
	err := db.
		Where("workspace_id = ?", workspaceID).
		Preload("Author").
		Order("updated_at desc").
		Find(&docs).Error
	return docs, err
}

// GetDoc возвращает документ пространства по идентификатору.
func GetDoc(db *gorm.DB, workspaceID uuid.UUID, docID uuid.UUID) (*Doc, error) {
	var doc Doc
	err := db.
		Where("workspace_id = ? AND id = ?", workspaceID, docID).
		Preload("Author").
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocStore реализует session.Store поверх базы данных.
type DocStore struct {
	db *gorm.DB
}

func NewDocStore(db *gorm.DB) *DocStore {
	return &DocStore{db: db}
}

func (s *DocStore) LoadDocument(ctx context.Context, id string) (*session.StoredDocument, error) {
	var doc Doc
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if IsNotFound(err) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	return &session.StoredDocument{
		ID:             doc.ID.String(),
		Title:          doc.Title,
		Body:           &doc.Content,
		SourceLanguage: doc.SourceLanguage,
		WorkspaceID:    doc.WorkspaceId.String(),
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// SaveDocument выполняет полную идемпотентную перезапись заголовка и
// содержимого. Последняя запись выигрывает.
func (s *DocStore) SaveDocument(ctx context.Context, id string, upd session.Update) error {
	return s.db.WithContext(ctx).
		Model(&Doc{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      upd.Title,
			"content":    *upd.Body,
			"updated_at": time.Now(),
		}).Error
}
