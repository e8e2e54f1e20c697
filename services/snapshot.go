package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jamjam-trek/config"
	"jamjam-trek/models"
	"jamjam-trek/providers"
)

// SnapshotStore protokolliert exportierte Snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Recent(ctx context.Context, limit int) ([]models.Snapshot, error)
}

// Archiver legt Snapshot-Dateien ab und räumt alte auf.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Rotate(ctx context.Context, prefix string, keep int) (int, error)
}

// ErrSnapshotsDisabled wird geliefert, wenn Datenbank oder S3 fehlen.
var ErrSnapshotsDisabled = errors.New("snapshots are not configured")

// ErrSnapshotRunning wird geliefert, solange bereits ein Lauf exportiert.
var ErrSnapshotRunning = errors.New("snapshot run already in progress")

// snapshotTimeFormat ist der Zeitstempel im Objektschlüssel (UTC, Millisekunden).
const snapshotTimeFormat = "2006-01-02T15-04-05.000Z"

// snapshotJob lädt eine Collection und liefert sie mit der Anzahl der Einträge.
type snapshotJob struct {
	collection string
	fetch      func(ctx context.Context) (any, int, error)
}

// SnapshotService exportiert die öffentlichen Collections der Trek-API.
type SnapshotService struct {
	Config  *config.Config
	Source  providers.Catalog
	Store   SnapshotStore
	Archive Archiver
	Logger  *zap.Logger

	now     func() time.Time
	newID   func() string
	running atomic.Bool
}

// NewSnapshotService erstellt eine neue Instanz des SnapshotService.
func NewSnapshotService(cfg *config.Config, src providers.Catalog, store SnapshotStore, archive Archiver, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		Config:  cfg,
		Source:  src,
		Store:   store,
		Archive: archive,
		Logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString()[:8] },
	}
}

func (s *SnapshotService) jobs() []snapshotJob {
	return []snapshotJob{
		{"treks", func(ctx context.Context) (any, int, error) {
			list, err := s.Source.Treks(ctx, providers.TrekQuery{IsActive: providers.Bool(true)})
			return list, len(list), err
		}},
		{"activities", func(ctx context.Context) (any, int, error) {
			list, err := s.Source.Activities(ctx, providers.ActivityQuery{IsActive: providers.Bool(true)})
			return list, len(list), err
		}},
		{"blogs", func(ctx context.Context) (any, int, error) {
			list, err := s.Source.Blogs(ctx, providers.BlogQuery{IsPublished: providers.Bool(true)})
			return list, len(list), err
		}},
		{"reviews", func(ctx context.Context) (any, int, error) {
			list, err := s.Source.PublishableReviews(ctx, 0)
			return list, len(list), err
		}},
	}
}

// Running meldet, ob gerade ein Snapshot-Lauf aktiv ist.
func (s *SnapshotService) Running() bool {
	return s.running.Load()
}

// Run exportiert alle Collections und gibt die Anzahl der gespeicherten Snapshots zurück.
// Fehler einzelner Collections werden geloggt und übersprungen. Pro Service läuft
// höchstens ein Lauf gleichzeitig; weitere Aufrufe liefern ErrSnapshotRunning.
func (s *SnapshotService) Run(ctx context.Context) (int, error) {
	if s.Store == nil || s.Archive == nil {
		return 0, ErrSnapshotsDisabled
	}
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSnapshotRunning
	}
	defer s.running.Store(false)
	s.Logger.Info("Starte Snapshot-Lauf.")

	var wg sync.WaitGroup
	var mu sync.Mutex
	stored := 0
	semaphore := make(chan struct{}, 2) // höchstens zwei parallele Abrufe

	for _, job := range s.jobs() {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(job snapshotJob) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := s.runJob(ctx, job); err != nil {
				s.Logger.Error("Snapshot fehlgeschlagen", zap.String("collection", job.collection), zap.Error(err))
				return
			}
			mu.Lock()
			stored++
			mu.Unlock()
		}(job)
	}

	wg.Wait()
	s.Logger.Info("Snapshot-Lauf abgeschlossen", zap.Int("stored", stored))
	return stored, nil
}

func (s *SnapshotService) runJob(ctx context.Context, job snapshotJob) error {
	log := s.Logger.With(zap.String("collection", job.collection))

	items, count, err := job.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	sum := sha256.Sum256(raw)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	// Die Kennung hält Schlüssel auch über Prozesse hinweg eindeutig (Server und CLI).
	key := fmt.Sprintf("snapshots/%s/%s-%s.json.gz", job.collection, s.now().UTC().Format(snapshotTimeFormat), s.newID())
	url, err := s.Archive.Put(ctx, key, buf.Bytes(), "application/gzip")
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	log.Info("Snapshot hochgeladen", zap.String("key", key), zap.Int("items", count))

	snap := &models.Snapshot{
		Collection: job.collection,
		ItemCount:  count,
		Checksum:   hex.EncodeToString(sum[:]),
		ObjectKey:  key,
		ObjectURL:  url,
		SizeBytes:  buf.Len(),
	}
	if err := s.Store.Save(ctx, snap); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

// Rotate behält pro Collection die neuesten SnapshotKeep Dateien und gibt die Anzahl
// gelöschter Dateien zurück.
func (s *SnapshotService) Rotate(ctx context.Context) (int, error) {
	if s.Archive == nil {
		return 0, ErrSnapshotsDisabled
	}
	deleted := 0
	var errs []error
	for _, job := range s.jobs() {
		n, err := s.Archive.Rotate(ctx, "snapshots/"+job.collection+"/", s.Config.SnapshotKeep)
		deleted += n
		if err != nil {
			s.Logger.Error("Rotation fehlgeschlagen", zap.String("collection", job.collection), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return deleted, errors.Join(errs...)
}

// Recent liefert die zuletzt protokollierten Snapshots.
func (s *SnapshotService) Recent(ctx context.Context, limit int) ([]models.Snapshot, error) {
	if s.Store == nil {
		return nil, ErrSnapshotsDisabled
	}
	return s.Store.Recent(ctx, limit)
}
