// Основной пакет приложения AIDoc. Отвечает за запуск приложения,
// инициализацию базы данных, миграцию моделей, выбор файлового хранилища и
// запуск HTTP сервера.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc"
	"github.com/aisa-it/aidoc/internal/aidoc/config"
	"github.com/aisa-it/aidoc/internal/aidoc/dao"
	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
	"github.com/aisa-it/aidoc/internal/aidoc/gormlogger"
)

var version string = "DEV"

var models = []any{
	&dao.User{},
	&dao.Workspace{},
	&dao.WorkspaceMember{},
	&dao.Doc{},
	&dao.FileAsset{},
}

func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	cfg := config.ReadConfig()
	dao.Config = cfg

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	slog.Info("AIDoc start.")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: false,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Fail set settings to conn pool", "err", err)
		os.Exit(1)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 15)

	if !*noMigration {
		slog.Info("Migrate models")
		if err := db.AutoMigrate(models...); err != nil {
			slog.Error("Fail migrate models", "err", err)
			os.Exit(1)
		}
	}

	var storage filestorage.FileStorage
	if cfg.MinioEndpoint != "" {
		storage, err = filestorage.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket, cfg.WebURL)
		if err != nil {
			slog.Error("Fail init Minio connection", "err", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("Minio endpoint not set, using local file storage", "dir", cfg.LocalStorageDir)
		storage, err = filestorage.NewLocalStorage(cfg.LocalStorageDir, cfg.WebURL)
		if err != nil {
			slog.Error("Fail init local storage", "err", err)
			os.Exit(1)
		}
	}

	aidoc.Server(db, storage, cfg, version)
}

// PrintBanner выводит заголовок приложения с версией и ссылкой на сайт.
func PrintBanner() {
	banner := `
          _____ _____
    /\   |_   _|  __ \  ___   ___
   /  \    | | | |  | |/ _ \ / __|
  / /\ \   | | | |  | | (_) | (__
 / ____ \ _| |_| |__| |\___/ \___|
/_/    \_\_____|_____/            %s
Collaborative structured document editor
%s
----------------------------------------------------
`
	colorReset := "\033[0m"

	colorYellow := "\033[33m"
	colorBlue := "\033[34m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion, colorBlue+"https://aisa.ru"+colorReset)
}
