package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"CatalogSync/internal/repository"
	"CatalogSync/internal/service"
	"CatalogSync/internal/table"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ViewHandler serves the read-only comparison and panel views.
type ViewHandler struct {
	metrics   *service.MetricsManager
	snapshots repository.SnapshotRepository
	logger    *logrus.Logger
}

// NewViewHandler creates a ViewHandler.
func NewViewHandler(metrics *service.MetricsManager, snapshots repository.SnapshotRepository, logger *logrus.Logger) *ViewHandler {
	return &ViewHandler{
		metrics:   metrics,
		snapshots: snapshots,
		logger:    logger,
	}
}

// ListSnapshots lists recorded snapshots, newest first.
// GET /api/snapshots?limit=20
func (h *ViewHandler) ListSnapshots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	snaps, err := h.snapshots.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListSnapshots failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, 0, len(snaps))
	for _, s := range snaps {
		items = append(items, gin.H{
			"id":            s.ID,
			"snapshot_date": s.SnapshotDate.Format("2006-01-02"),
			"batch_id":      s.BatchID,
			"created_at":    s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": items})
}

// ComparisonView serves the single-snapshot comparison table. The snapshot
// is picked by snapshot_id, by capture date, or defaults to the latest.
// GET /api/views/comparison?snapshot_id=3&groups=core,action&include_unmatched=true
// GET /api/views/comparison?date=2026-08-30
func (h *ViewHandler) ComparisonView(c *gin.Context) {
	opts := service.ViewOptions{
		Groups:           splitCSV(c.Query("groups")),
		IncludeUnmatched: c.Query("include_unmatched") == "true",
	}
	switch {
	case c.Query("snapshot_id") != "":
		id, err := strconv.ParseUint(c.Query("snapshot_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_id must be a number"})
			return
		}
		opts.SnapshotIDs = []uint64{id}
	case c.Query("date") != "":
		day, err := time.Parse("2006-01-02", c.Query("date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		id, err := h.snapshots.SnapshotIDByDate(c.Request.Context(), day)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		opts.SnapshotIDs = []uint64{id}
	}

	h.serveView(c, opts)
}

// PanelView serves the cross-snapshot wide panel.
// GET /api/views/panel?n_latest=3&groups=performance_snapshot&deltas=true&deltas_pct=true
func (h *ViewHandler) PanelView(c *gin.Context) {
	nLatest, _ := strconv.Atoi(c.DefaultQuery("n_latest", "2"))
	opts := service.ViewOptions{
		Groups:      splitCSV(c.Query("groups")),
		NLatest:     nLatest,
		WithDeltas:  c.DefaultQuery("deltas", "true") == "true",
		DeltasAsPct: c.Query("deltas_pct") == "true",
	}
	for _, raw := range splitCSV(c.Query("snapshot_ids")) {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_ids must be numbers"})
			return
		}
		opts.SnapshotIDs = append(opts.SnapshotIDs, id)
	}

	h.serveView(c, opts)
}

func (h *ViewHandler) serveView(c *gin.Context, opts service.ViewOptions) {
	view, err := h.metrics.GetView(c.Request.Context(), opts)
	if err != nil {
		h.logger.WithError(err).Error("GetView failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tableJSON(view))
}

// tableJSON renders a table as {columns, rows}; absent cells come out null.
func tableJSON(t *table.Table) gin.H {
	cols := t.Columns()
	rows := make([][]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := make([]any, len(cols))
		for j, col := range cols {
			row[j] = t.Value(i, col)
		}
		rows = append(rows, row)
	}
	return gin.H{"columns": cols, "rows": rows}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
