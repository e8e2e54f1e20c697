package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jamjam-trek/providers"
	"jamjam-trek/providers/trekapi"
	"jamjam-trek/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func setupAdminRoutes(router *gin.Engine, api *trekapi.Client, dashboard *services.DashboardService, snapshots *services.SnapshotService, log *zap.Logger) {
	rg := router.Group("/admin")

	rg.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := api.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	// Logout gelingt lokal immer; Fehler der API werden nur geloggt.
	rg.POST("/logout", func(c *gin.Context) {
		if err := clientFor(c, api).Logout(c.Request.Context()); err != nil && !errors.Is(err, trekapi.ErrNoSession) {
			log.Warn("Logout at trek API failed", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	auth := rg.Group("", sessionAuthMiddleware())

	auth.GET("/me", func(c *gin.Context) {
		me, err := clientFor(c, api).Me(c.Request.Context())
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, me)
	})

	auth.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, dashboard.Stats(c.Request.Context(), clientFor(c, api)))
	})

	for _, res := range []trekapi.Resource{trekapi.ResourceTreks, trekapi.ResourceActivities, trekapi.ResourceBlogs} {
		setupResourceRoutes(auth, api, res, log)
	}

	auth.GET("/reviews", func(c *gin.Context) {
		reviews, err := clientFor(c, api).Reviews(c.Request.Context())
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
	})

	auth.PUT("/reviews/:id/approve", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := clientFor(c, api).ApproveReview(c.Request.Context(), id); err != nil {
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review approved"})
	})

	auth.DELETE("/reviews/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := clientFor(c, api).DeleteReview(c.Request.Context(), id); err != nil {
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	})

	auth.GET("/snapshots", func(c *gin.Context) {
		snaps, err := snapshots.Recent(c.Request.Context(), 50)
		if errors.Is(err, services.ErrSnapshotsDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			log.Error("Listing snapshots failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, snaps)
	})

	auth.POST("/snapshots", func(c *gin.Context) {
		if snapshots.Store == nil || snapshots.Archive == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrSnapshotsDisabled.Error()})
			return
		}
		if snapshots.Running() {
			c.JSON(http.StatusConflict, gin.H{"error": services.ErrSnapshotRunning.Error()})
			return
		}
		go runSnapshots(context.Background(), snapshots, log)
		c.JSON(http.StatusAccepted, gin.H{"message": "Snapshot job started in background"})
	})
}

// setupResourceRoutes registriert Liste, Anlegen, Ändern und Löschen einer Sammlung.
func setupResourceRoutes(rg *gin.RouterGroup, api *trekapi.Client, res trekapi.Resource, log *zap.Logger) {
	path := "/" + string(res)
	logger := log.With(zap.String("resource", string(res)))

	rg.GET(path, func(c *gin.Context) {
		client := clientFor(c, api)
		ctx := c.Request.Context()

		var (
			items any
			count int
			err   error
		)
		switch res {
		case trekapi.ResourceTreks:
			list, e := client.Treks(ctx, providers.TrekQuery{DataType: c.Query("data_type")})
			items, count, err = list, len(list), e
		case trekapi.ResourceActivities:
			list, e := client.Activities(ctx, providers.ActivityQuery{Category: c.Query("category")})
			items, count, err = list, len(list), e
		case trekapi.ResourceBlogs:
			list, e := client.Blogs(ctx, providers.BlogQuery{})
			items, count, err = list, len(list), e
		}
		if err != nil {
			logger.Error("Listing failed", zap.Error(err))
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{string(res): items, "count": count})
	})

	rg.POST(path, func(c *gin.Context) {
		form, err := buildForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := clientFor(c, api).Create(c.Request.Context(), res, form)
		if err != nil {
			logger.Warn("Create failed", zap.Error(err))
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	rg.PUT(path+"/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		form, err := buildForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := clientFor(c, api).Update(c.Request.Context(), res, id, form)
		if err != nil {
			logger.Warn("Update failed", zap.Int("id", id), zap.Error(err))
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	rg.DELETE(path+"/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := clientFor(c, api).Delete(c.Request.Context(), res, id); err != nil {
			logger.Warn("Delete failed", zap.Int("id", id), zap.Error(err))
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": res.Singular() + " deleted"})
	})
}

// paramID liest die numerische :id und antwortet selbst mit 400, wenn sie fehlt.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
