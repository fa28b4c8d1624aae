// DAO для работы с данными рабочих пространств и членством в них.
package dao

import (
	"regexp"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/dto"
)

// Роли участников рабочего пространства.
const (
	GuestRole  = 5
	MemberRole = 10
	AdminRole  = 15
)

// IsValidRole проверяет, что роль входит в допустимый набор.
func IsValidRole(role int) bool {
	return role == GuestRole || role == MemberRole || role == AdminRole
}

var slugReg = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug проверяет допустимость идентификатора пространства.
func ValidSlug(slug string) bool {
	return slugReg.MatchString(slug)
}

// Рабочие пространства
type Workspace struct {
	ID        uuid.UUID      `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" gorm:"uniqueIndex:,where:deleted_at is NULL"`

	CreatedById uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	OwnerId     uuid.UUID `json:"owner_id" gorm:"type:uuid"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerId"`

	CurrentUserMembership *WorkspaceMember `json:"current_user_membership,omitempty" gorm:"-"`
}

func (Workspace) TableName() string { return "workspaces" }

func (w *Workspace) ToDTO() *dto.Workspace {
	if w == nil {
		return nil
	}
	d := &dto.Workspace{
		ID:        w.ID,
		Name:      w.Name,
		Slug:      w.Slug,
		OwnerId:   w.OwnerId,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if w.CurrentUserMembership != nil {
		d.CurrentUserRole = &w.CurrentUserMembership.Role
	}
	return d
}

// Участники рабочих пространств
type WorkspaceMember struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkspaceId uuid.UUID `json:"workspace_id" gorm:"type:uuid;uniqueIndex:idx_workspace_member"`
	MemberId    uuid.UUID `json:"member_id" gorm:"type:uuid;uniqueIndex:idx_workspace_member"`

	Role int `json:"role"`

	Workspace *Workspace `json:"-" gorm:"foreignKey:WorkspaceId"`
	Member    *User      `json:"member,omitempty" gorm:"foreignKey:MemberId"`
}

func (WorkspaceMember) TableName() string { return "workspace_members" }

func (wm *WorkspaceMember) ToDTO() *dto.WorkspaceMember {
	if wm == nil {
		return nil
	}
	return &dto.WorkspaceMember{
		ID:        wm.ID,
		Role:      wm.Role,
		CreatedAt: wm.CreatedAt,
		Member:    wm.Member.ToLightDTO(),
	}
}

// GetWorkspaceBySlug возвращает пространство по идентификатору slug вместе с
// членством пользователя userID.
func GetWorkspaceBySlug(db *gorm.DB, slug string, userID uuid.UUID) (*Workspace, error) {
	var workspace Workspace
	if err := db.Where("slug = ?", slug).First(&workspace).Error; err != nil {
		return nil, err
	}

	var membership WorkspaceMember
	err := db.Where("workspace_id = ? AND member_id = ?", workspace.ID, userID).First(&membership).Error
	if err == nil {
		workspace.CurrentUserMembership = &membership
	} else if !IsNotFound(err) {
		return nil, err
	}

	return &workspace, nil
}

// GetUserWorkspaces возвращает пространства, в которых состоит пользователь.
func GetUserWorkspaces(db *gorm.DB, userID uuid.UUID) ([]Workspace, error) {
	var workspaces []Workspace
	err := db.
		Joins("JOIN workspace_members wm ON wm.workspace_id = workspaces.id").
		Where("wm.member_id = ?", userID).
		Order("workspaces.created_at").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}

	for i := range workspaces {
		var membership WorkspaceMember
		if err := db.Where("workspace_id = ? AND member_id = ?", workspaces[i].ID, userID).First(&membership).Error; err == nil {
			workspaces[i].CurrentUserMembership = &membership
		}
	}

	return workspaces, nil
}

// GetWorkspaceMembers возвращает участников пространства с данными пользователей.
func GetWorkspaceMembers(db *gorm.DB, workspaceID uuid.UUID) ([]WorkspaceMember, error) {
	var members []WorkspaceMember
	err := db.
		Where("workspace_id = ?", workspaceID).
		Preload("Member").
		Order("created_at").
		Find(&members).Error
	return members, err
}
