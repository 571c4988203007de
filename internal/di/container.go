// Package di wires the application together.
package di

import (
	"github.com/GoArmGo/GalleryApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/GalleryApp/internal/adapter/vision"
	"github.com/GoArmGo/GalleryApp/internal/app"
	"github.com/GoArmGo/GalleryApp/internal/config"
	"github.com/GoArmGo/GalleryApp/internal/database/client"
	"github.com/GoArmGo/GalleryApp/internal/database/storage"
	"github.com/GoArmGo/GalleryApp/internal/handler"
	"github.com/GoArmGo/GalleryApp/internal/logger"
	"github.com/GoArmGo/GalleryApp/internal/rabbitmq"
	"github.com/GoArmGo/GalleryApp/internal/signing"
	"github.com/GoArmGo/GalleryApp/internal/usecase"
)

// BuildApp initializes all dependencies and returns the assembled App.
func BuildApp() (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// Entity stores share the gorm handle; tag mutations of the album and
	// gallery stores go through the ledger storage for usage accounting.
	ledgerStorage := storage.NewTagLedgerStorage(dbClient.Gorm, slogger)
	pictureStorage := storage.NewPicturePostgresStorage(dbClient.Gorm, slogger)
	albumStorage := storage.NewAlbumPostgresStorage(dbClient.Gorm, ledgerStorage, slogger)
	galleryStorage := storage.NewGalleryPostgresStorage(dbClient.Gorm, ledgerStorage, slogger)
	userStorage := storage.NewUserPostgresStorage(dbClient.Gorm, slogger)

	fileStorage, err := minio.NewMinioClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	rabbitClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	visionClient := vision.NewClient(cfg)

	signer, err := signing.New(cfg.SigningSecret(), cfg.MediaBasePath, cfg.SignedURLAlgorithm)
	if err != nil {
		return nil, err
	}

	tagLedger := usecase.NewTagLedger(ledgerStorage, slogger)
	ingestor := usecase.NewPictureIngestor(pictureStorage, albumStorage, fileStorage, tagLedger, rabbitClient, slogger)
	enricher := usecase.NewEnricher(pictureStorage, albumStorage, fileStorage, tagLedger, visionClient, visionClient, slogger)
	accessGate := usecase.NewAccessGate(pictureStorage, signer, cfg.SignedURLTTL, slogger)

	uploadLimiter := make(chan struct{}, cfg.UploadLimit)

	galleryHandler := handler.NewGalleryHandler(
		ingestor,
		tagLedger,
		accessGate,
		pictureStorage,
		albumStorage,
		galleryStorage,
		userStorage,
		uploadLimiter,
		slogger,
	)

	application := app.NewApp(
		cfg,
		slogger,
		dbClient,
		rabbitClient,
		galleryHandler,
		enricher,
		rabbitClient,
	)

	slogger.Info("all dependencies initialized")
	return application, nil
}
