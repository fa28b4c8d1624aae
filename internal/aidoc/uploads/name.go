package uploads

import (
	"regexp"
	"strings"
)

// Шаблон префикса уникальности "<токен>_<unix millis>." в начале имени файла.
var uniquenessPrefix = regexp.MustCompile(`^[0-9a-z]+_[0-9]{10,}\.`)

// DisplayName выводит отображаемое имя файла из ключа хранения или URL:
// отбрасывает путь и префикс уникальности, при пустом остатке возвращает
// общий ярлык "file".
func DisplayName(storedKeyOrURL string) string {
	name := storedKeyOrURL

	// Отбросить query/fragment для URL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	name = uniquenessPrefix.ReplaceAllString(name, "")

	if strings.TrimSpace(name) == "" {
		return "file"
	}
	return name
}
