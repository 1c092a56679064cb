package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/watersafety/asset-management-backend/internal/cloud"
	"github.com/watersafety/asset-management-backend/internal/config"
	httpHandlers "github.com/watersafety/asset-management-backend/internal/http"
	"github.com/watersafety/asset-management-backend/internal/notify"
	"github.com/watersafety/asset-management-backend/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db := storage.New(storage.Options{
		UseLocal:        config.UseLocalStorage(),
		LocalDataDir:    config.LocalDataDir(),
		Region:          config.AWSRegion(),
		AssetsTable:     config.AssetsTable(),
		AuditTable:      config.AuditTable(),
		AssetTypesTable: config.AssetTypesTable(),
	})

	ctx := context.Background()

	var notifier notify.Notifier
	if !config.UseLocalStorage() && config.SNSTopicArn() != "" {
		sn, err := cloud.NewSNSNotifier(ctx, config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns client init failed")
		}
		notifier = sn
	} else {
		notifier = notify.NewLocalNotifier()
	}

	var archiver httpHandlers.Archiver
	if config.TemplateArchiveOn() && config.S3Bucket() != "" {
		s3a, err := cloud.NewS3Archiver(ctx, config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client init failed")
		}
		archiver = s3a
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(httpHandlers.RequestID())
	app.Use(httpHandlers.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, &httpHandlers.Deps{
		Store:      db,
		Pager:      db,
		Notifier:   notifier,
		Archiver:   archiver,
		Production: config.IsProduction(),
	})

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Bool("localStorage", config.UseLocalStorage()).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
