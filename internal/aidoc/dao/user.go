// DAO для работы с данными пользователей.
package dao

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gofrs/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/dto"
)

// Пользователи
type User struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	Password  string `json:"-"`
	Email     string `json:"email" gorm:"uniqueIndex:,where:deleted_at is NULL and email <> ''"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	LastActive    *time.Time `json:"last_active"`
	LastLoginTime *time.Time `json:"-"`
	LastLoginIp   string     `json:"-"`

	LastWorkspaceId *string `json:"-" gorm:"index"`

	LastWorkspace *Workspace `json:"-" gorm:"foreignKey:LastWorkspaceId"`
}

func (User) TableName() string { return "users" }

func (u *User) ToLightDTO() *dto.UserLight {
	if u == nil {
		return nil
	}
	return &dto.UserLight{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// GetUserByEmail возвращает активного пользователя по email.
func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func GetUserByID(db *gorm.DB, id string) (*User, error) {
	var user User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists проверяет наличие пользователя с указанным email.
func UserExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func GenPassword() string {
	return password.MustGenerate(12, 6, 0, false, false)
}

// Генерация хэша пароля для базы
func GenPasswordHash(password string) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	salt := make([]rune, 32)
	for i := range salt {
		nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		salt[i] = letters[nBig.Int64()]
	}

	return fmt.Sprintf("pbkdf2_sha256$260000$%s$%s",
		string(salt),
		base64.StdEncoding.EncodeToString(pbkdf2.Key([]byte(password), []byte(string(salt)), 260000, 32, sha256.New)),
	)
}

// IsNotFound сообщает, что ошибка означает отсутствие записи.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
