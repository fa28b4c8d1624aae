package dao

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSlug(t *testing.T) {
	valid := []string{"team", "my-team", "a1", "doc-2024", "a-b-c"}
	invalid := []string{"", "-team", "team-", "My-Team", "my_team", "my team", "тест"}

	for _, slug := range valid {
		assert.True(t, ValidSlug(slug), slug)
	}
	for _, slug := range invalid {
		assert.False(t, ValidSlug(slug), slug)
	}
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(GuestRole))
	assert.True(t, IsValidRole(MemberRole))
	assert.True(t, IsValidRole(AdminRole))

	assert.False(t, IsValidRole(0))
	assert.False(t, IsValidRole(7))
	assert.False(t, IsValidRole(20))
}

func TestGenPasswordHashFormat(t *testing.T) {
	hash := GenPasswordHash("secret")

	ss := strings.Split(hash, "$")
	assert.Len(t, ss, 4)
	assert.Equal(t, "pbkdf2_sha256", ss[0])
	assert.Equal(t, "260000", ss[1])
	assert.Len(t, ss[2], 32)
	assert.NotEmpty(t, ss[3])

	// Соль случайная, хэши одного пароля не совпадают
	assert.NotEqual(t, hash, GenPasswordHash("secret"))
}
