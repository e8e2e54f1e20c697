package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"jamjam-trek/config"
	"jamjam-trek/providers/trekapi"
	"jamjam-trek/services"
	"jamjam-trek/storage"
)

func main() {
	logging, err := newLogger()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Snapshot-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if !cfg.SnapshotsEnabled() {
		logging.Fatal("Snapshots nicht konfiguriert, DB_HOST, DB_NAME, S3_URL und S3_BUCKET werden benötigt")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// 1. Datenbank verbinden
	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Fehler beim Verbinden mit der Datenbank", zap.Error(err))
	}

	// 2. S3-Client erstellen
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	// 3. Collections exportieren, ohne Cache direkt von der API
	api := trekapi.NewClient(cfg, nil, logging)
	svc := services.NewSnapshotService(cfg, api, storage.NewSnapshotStore(db), storage.NewArchive(s3Client, cfg, logging), logging)

	stored, err := svc.Run(ctx)
	if err != nil {
		logging.Fatal("Fehler beim Snapshot-Lauf", zap.Error(err))
	}

	// 4. Alte Snapshots rotieren
	deleted, err := svc.Rotate(ctx)
	if err != nil {
		logging.Fatal("Fehler bei der Rotation alter Snapshots", zap.Error(err))
	}

	logging.Info("Snapshot-Prozess erfolgreich abgeschlossen.", zap.Int("stored", stored), zap.Int("rotated", deleted))
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
