package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jamjam-trek/config"
	"jamjam-trek/models"
	"jamjam-trek/providers"
	"jamjam-trek/providers/trekapi"
	"jamjam-trek/services"
)

// respondUpstreamError übersetzt Fehler der Trek-API in eine JSON-Antwort.
func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *trekapi.APIError
	switch {
	case errors.Is(err, trekapi.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized})
	case errors.Is(err, trekapi.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func setupPublicRoutes(router *gin.Engine, cfg *config.Config, api *trekapi.Client, log *zap.Logger) {
	rg := router.Group("/api")

	// Listen liefern bei Fehlern der API eine leere Liste; die Seite zeigt dann "nichts gefunden".
	rg.GET("/treks", func(c *gin.Context) {
		treks, err := api.Treks(c.Request.Context(), providers.TrekQuery{IsActive: providers.Bool(true)})
		if err != nil {
			log.Error("Fetching treks failed", zap.Error(err))
			treks = []models.Trek{}
		}
		treks = services.SortTreks(services.FilterTreks(treks, c.Query("type")), services.ParseSortOrder(c.Query("sort")))
		c.JSON(http.StatusOK, gin.H{"treks": treks, "count": len(treks)})
	})

	rg.GET("/treks/featured", func(c *gin.Context) {
		treks, err := api.Treks(c.Request.Context(), providers.TrekQuery{
			IsActive:   providers.Bool(true),
			IsFeatured: providers.Bool(true),
		})
		if err != nil {
			log.Error("Fetching featured treks failed", zap.Error(err))
			treks = []models.Trek{}
		}
		c.JSON(http.StatusOK, gin.H{"treks": services.Featured(treks, cfg.FeaturedLimit)})
	})

	rg.GET("/treks/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trek id"})
			return
		}
		treks, err := api.Treks(c.Request.Context(), providers.TrekQuery{IsActive: providers.Bool(true)})
		if err != nil {
			log.Error("Fetching treks failed", zap.Int("id", id), zap.Error(err))
		}
		trek, ok := services.FindTrek(treks, id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "trek not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"trek": trek, "difficulty_level": services.DifficultyLevel(trek.Difficulty)})
	})

	rg.GET("/activities", func(c *gin.Context) {
		acts, err := api.Activities(c.Request.Context(), providers.ActivityQuery{IsActive: providers.Bool(true)})
		if err != nil {
			log.Error("Fetching activities failed", zap.Error(err))
			acts = []models.Activity{}
		}
		categories := services.Categories(acts)
		acts = services.SortActivities(services.FilterActivities(acts, c.Query("category")), services.ParseSortOrder(c.Query("sort")))
		c.JSON(http.StatusOK, gin.H{"activities": acts, "categories": categories, "count": len(acts)})
	})

	rg.GET("/blogs", func(c *gin.Context) {
		blogs, err := api.Blogs(c.Request.Context(), providers.BlogQuery{IsPublished: providers.Bool(true)})
		if err != nil {
			log.Error("Fetching blogs failed", zap.Error(err))
			blogs = []models.Blog{}
		}
		c.JSON(http.StatusOK, gin.H{"blogs": blogs, "count": len(blogs)})
	})

	rg.GET("/blogs/total", func(c *gin.Context) {
		total, err := api.TotalBlogs(c.Request.Context())
		if err != nil {
			log.Error("Fetching blog total failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, total)
	})

	rg.GET("/blogs/:slug", func(c *gin.Context) {
		blog, err := api.Blog(c.Request.Context(), c.Param("slug"))
		if err != nil {
			log.Warn("Blog not available", zap.String("slug", c.Param("slug")), zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"blog": blog, "sections": services.BlogSections(blog)})
	})

	rg.GET("/reviews", func(c *gin.Context) {
		perPage := cfg.ReviewsPerPage
		if v, err := strconv.Atoi(c.Query("per_page")); err == nil && v > 0 {
			perPage = v
		}
		reviews, _ := api.PublishableReviews(c.Request.Context(), perPage)
		c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
	})

	rg.GET("/reviews/latest", func(c *gin.Context) {
		reviews, _ := api.LatestReviews(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
	})

	rg.GET("/reviews/stats", func(c *gin.Context) {
		stats, err := api.ReviewStats(c.Request.Context())
		if err != nil {
			log.Error("Fetching review stats failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	limiter := newIPRateLimiter(cfg.ReviewRateLimit, cfg.ReviewRateBurst)
	rg.POST("/reviews", rateLimitMiddleware(limiter, log), func(c *gin.Context) {
		var in models.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := api.SubmitReview(c.Request.Context(), in)
		if err != nil {
			log.Error("Submitting review failed", zap.Error(err))
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Thank you! Your review will be published after approval.", "data": res})
	})
}
