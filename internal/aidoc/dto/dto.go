// Содержит структуры данных (DTO) для представления пользователей, рабочих
// пространств и документов в приложении. Используется для обмена данными
// между слоями приложения и сериализации в формате JSON.
//
// Основные возможности:
//   - Представление информации о пользователях без чувствительных полей.
//   - Представление рабочих пространств с ролью текущего пользователя.
//   - Представление документов без тела, включая количество слов.
package dto

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type UserLight struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

func (u *UserLight) GetName() string {
	if u.FirstName != "" && u.LastName != "" {
		return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	}
	return u.Email
}

type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerId   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CurrentUserRole *int `json:"current_user_role,omitempty" extensions:"x-nullable"`
}

type WorkspaceMember struct {
	ID        uuid.UUID  `json:"id"`
	Role      int        `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	Member    *UserLight `json:"member"`
}

type Doc struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	SourceLanguage string    `json:"source_language"`
	WorkspaceId    uuid.UUID `json:"workspace_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	WordCount int        `json:"word_count"`
	Author    *UserLight `json:"author,omitempty" extensions:"x-nullable"`
}

type FileAsset struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	FileSize    int       `json:"file_size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
}
