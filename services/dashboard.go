package services

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jamjam-trek/models"
	"jamjam-trek/providers"
)

// DashboardStats sind die Kennzahlen der Admin-Übersicht.
type DashboardStats struct {
	Treks           int     `json:"treks"`
	Blogs           int     `json:"blogs"`
	Reviews         int     `json:"reviews"`
	FeaturedTreks   int     `json:"featured_treks"`
	PublishedBlogs  int     `json:"published_blogs"`
	ApprovedReviews int     `json:"approved_reviews"`
	PendingReviews  int     `json:"pending_reviews"`
	AvgRating       float64 `json:"avg_rating"`
}

// DashboardService berechnet die Statistik aus den drei Listen der API.
type DashboardService struct {
	Logger *zap.Logger
}

// NewDashboardService erstellt einen neuen DashboardService.
func NewDashboardService(logger *zap.Logger) *DashboardService {
	return &DashboardService{Logger: logger}
}

// Stats lädt Treks, Blogs und Bewertungen parallel. Schlägt ein Abruf fehl, zählt
// die Liste als leer; ausgewertet wird erst, wenn alle drei fertig sind.
func (s *DashboardService) Stats(ctx context.Context, src providers.Dashboard) DashboardStats {
	var (
		treks   []models.Trek
		blogs   []models.Blog
		reviews []models.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := src.Treks(gctx, providers.TrekQuery{})
		if err != nil {
			s.Logger.Warn("Treks für Dashboard nicht verfügbar", zap.Error(err))
			return nil
		}
		treks = list
		return nil
	})
	g.Go(func() error {
		list, err := src.Blogs(gctx, providers.BlogQuery{})
		if err != nil {
			s.Logger.Warn("Blogs für Dashboard nicht verfügbar", zap.Error(err))
			return nil
		}
		blogs = list
		return nil
	})
	g.Go(func() error {
		list, err := src.Reviews(gctx)
		if err != nil {
			s.Logger.Warn("Bewertungen für Dashboard nicht verfügbar", zap.Error(err))
			return nil
		}
		reviews = list
		return nil
	})
	_ = g.Wait()

	return ComputeStats(treks, blogs, reviews)
}

// ComputeStats zählt die Listen aus. Der Durchschnitt berücksichtigt nur Bewertungen
// mit Rating und ist auf eine Nachkommastelle gerundet.
func ComputeStats(treks []models.Trek, blogs []models.Blog, reviews []models.Review) DashboardStats {
	st := DashboardStats{
		Treks:   len(treks),
		Blogs:   len(blogs),
		Reviews: len(reviews),
	}
	for _, t := range treks {
		if t.IsFeatured {
			st.FeaturedTreks++
		}
	}
	for _, b := range blogs {
		if b.IsActive {
			st.PublishedBlogs++
		}
	}

	var sum float64
	var rated int
	for _, r := range reviews {
		switch {
		case r.Approved():
			st.ApprovedReviews++
		case r.Pending():
			st.PendingReviews++
		}
		if r.Rating != 0 {
			sum += float64(r.Rating)
			rated++
		}
	}
	if rated > 0 {
		st.AvgRating = math.Round(sum/float64(rated)*10) / 10
	}
	return st
}
