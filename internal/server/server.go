package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves series queries over HTTP.
type Handler struct {
	collector *collector.Collector
	recorder  recorder.Recorder
}

// NewRouter builds the gin engine. gatherer backs /metrics; rec may be nil.
func NewRouter(col *collector.Collector, rec recorder.Recorder, gatherer prometheus.Gatherer) *gin.Engine {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	h := &Handler{collector: col, recorder: rec}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	{
		api.GET("/series/:kind/:symbol", h.GetSeries)
		api.GET("/runs/:kind/:symbol/latest", h.GetLatestRun)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

// GetSeries loads one series and, unless indicators=none, appends every indicator.
// Query: outputsize, interval, indicators (all|none), rows (last N rows only).
func (h *Handler) GetSeries(c *gin.Context) {
	kind, err := model.ParseSeriesKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := model.Request{
		Kind:       kind,
		Symbol:     c.Param("symbol"),
		OutputSize: c.Query("outputsize"),
		Interval:   c.Query("interval"),
	}.WithDefaults()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	indicators := c.DefaultQuery("indicators", "all")
	if indicators != "all" && indicators != "none" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "indicators must be all or none"})
		return
	}
	rows := 0
	if v := c.Query("rows"); v != "" {
		if rows, err = strconv.Atoi(v); err != nil || rows < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rows must be a non-negative integer"})
			return
		}
	}

	var t *model.Table
	if indicators == "all" {
		t, err = h.collector.Collect(c.Request.Context(), req)
	} else if t = h.collector.Loader.Load(c.Request.Context(), req); t.Empty() {
		err = fmt.Errorf("%s: %w", req, collector.ErrNoData)
	}
	switch {
	case errors.Is(err, collector.ErrNoData):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if rows > 0 {
		t = t.Tail(rows)
	}
	c.JSON(http.StatusOK, t)
}

// GetLatestRun returns the summary of the last recorded run for the series.
func (h *Handler) GetLatestRun(c *gin.Context) {
	kind, err := model.ParseSeriesKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	run, err := h.recorder.LatestRun(c.Param("symbol"), kind)
	if errors.Is(err, recorder.ErrNoRun) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          run.ID,
		"symbol":      run.Symbol,
		"kind":        run.Kind,
		"interval":    run.Interval,
		"output_size": run.OutputSize,
		"fetched_at":  run.FetchedAt.UTC().Format(time.RFC3339),
		"rows":        run.Rows,
	})
}

// Run serves engine on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, engine http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("[INFO] http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
