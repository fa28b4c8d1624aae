// Управление конфигурацией приложения из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Валидация обязательных переменных.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (passwords) в логах.
//   - Значения по умолчанию и ограничение диапазонов для периодических задач.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
)

type Config struct {
	SecretKey string `env:"SECRET_KEY"`

	DatabaseDSN string `env:"DATABASE_URL"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`
	MinioBucket    string `env:"MINIO_BUCKET_NAME"`

	// Каталог локального хранилища, используется когда Minio не настроен.
	LocalStorageDir string `env:"LOCAL_STORAGE_DIR"`

	EmailDisabled bool   `env:"EMAIL_DISABLED"`
	EmailHost     string `env:"EMAIL_HOST"`
	EmailUser     string `env:"EMAIL_HOST_USER"`
	EmailPassword string `env:"EMAIL_HOST_PASSWORD"`
	EmailPort     int    `env:"EMAIL_PORT"`
	EmailFrom     string `env:"EMAIL_FROM"`
	EmailWorkers  int    `env:"EMAIL_WORKERS"`

	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	// Интервал автосохранения открытых документов в секундах.
	AutosaveInterval int `env:"AUTOSAVE_PERIOD"`

	SignUpEnable bool `env:"SIGN_UP_ENABLE"`
	Demo         bool `env:"DEMO"`
}

// ReadConfig загружает конфигурацию приложения из переменных окружения и выполняет валидацию.
// Обязательные переменные валидируются, типы данных преобразуются из строк, секретные значения маскируются в логах.
// Если WEB_URL не задан или некорректен, приложение завершает работу с ошибкой.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	// Check required envs
	if config.WebURLRaw == "" {
		slog.Error("WEB_URL is required")
		os.Exit(1)
	} else {
		var err error
		config.WebURL, err = url.Parse(config.WebURLRaw)
		if err != nil {
			slog.Error("WEB_URL incorrect", "err", err)
			os.Exit(1)
		}
	}

	if config.AutosaveInterval <= 0 || config.AutosaveInterval > 600 {
		config.AutosaveInterval = 30
	}

	if config.EmailWorkers <= 0 {
		config.EmailWorkers = 5
	}

	if config.LocalStorageDir == "" {
		config.LocalStorageDir = "uploads-data"
	}

	return config
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure passwords in log
		if strings.Contains(strings.ToLower(fName), "pass") || strings.Contains(strings.ToLower(fName), "secret") || strings.Contains(strings.ToLower(fName), "token") {
			pass := strings.Split(GetEnv(fEnvTag), "")
			logValue = pass[0]
			for i := 1; i < len(pass)-1; i++ {
				logValue += "*"
			}
			logValue += pass[len(pass)-1]
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}
