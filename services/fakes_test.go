package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"jamjam-trek/models"
	"jamjam-trek/providers"
)

var errUpstream = errors.New("upstream unavailable")

// fakeSource bedient Catalog und Dashboard aus festen Listen.
type fakeSource struct {
	treks      []models.Trek
	activities []models.Activity
	blogs      []models.Blog
	reviews    []models.Review

	failTreks   bool
	failBlogs   bool
	failReviews bool

	// gate hält Treks an, bis es geschlossen wird.
	gate chan struct{}
}

func (f *fakeSource) Treks(context.Context, providers.TrekQuery) ([]models.Trek, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.failTreks {
		return nil, errUpstream
	}
	return f.treks, nil
}

func (f *fakeSource) Activities(context.Context, providers.ActivityQuery) ([]models.Activity, error) {
	return f.activities, nil
}

func (f *fakeSource) Blogs(context.Context, providers.BlogQuery) ([]models.Blog, error) {
	if f.failBlogs {
		return nil, errUpstream
	}
	return f.blogs, nil
}

func (f *fakeSource) Reviews(context.Context) ([]models.Review, error) {
	if f.failReviews {
		return nil, errUpstream
	}
	return f.reviews, nil
}

func (f *fakeSource) PublishableReviews(context.Context, int) ([]models.Review, error) {
	return f.reviews, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	failFor string
	rotated []string
}

func (a *fakeArchive) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if a.failFor != "" && strings.Contains(key, a.failFor) {
		return "", errors.New("bucket unavailable")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = data
	return "https://s3.test/bucket/" + key, nil
}

func (a *fakeArchive) Rotate(_ context.Context, prefix string, keep int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rotated = append(a.rotated, prefix)
	return 1, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []models.Snapshot
}

// Save lehnt doppelte Objektschlüssel ab wie der Unique-Index der Tabelle.
func (s *fakeStore) Save(_ context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.saved {
		if existing.ObjectKey == snap.ObjectKey {
			return fmt.Errorf("duplicate object key %q", snap.ObjectKey)
		}
	}
	s.saved = append(s.saved, *snap)
	return nil
}

func (s *fakeStore) Recent(_ context.Context, limit int) ([]models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.saved) {
		limit = len(s.saved)
	}
	return append([]models.Snapshot{}, s.saved[:limit]...), nil
}
