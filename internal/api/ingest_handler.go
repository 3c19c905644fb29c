package api

import (
	"net/http"
	"strconv"
	"time"

	"CatalogSync/internal/model"
	"CatalogSync/internal/repository"
	"CatalogSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IngestHandler is the write boundary: data-collection adapters post their
// capture batches here.
type IngestHandler struct {
	ingestor *service.Ingestor
	logger   *logrus.Logger
}

// NewIngestHandler creates an IngestHandler.
func NewIngestHandler(db *gorm.DB, logger *logrus.Logger) *IngestHandler {
	snapshots := repository.NewSnapshotRepository(db)
	catalog := repository.NewCatalogRepository(db)
	return &IngestHandler{
		ingestor: service.NewIngestor(snapshots, catalog, logger),
		logger:   logger,
	}
}

type openSnapshotRequest struct {
	SnapshotDate string   `json:"snapshot_date" binding:"required"` // YYYY-MM-DD
	SourceFiles  []string `json:"source_files"`
	CategoryURLs []string `json:"category_urls"`
}

// OpenSnapshot opens a new capture snapshot.
// POST /api/ingest/snapshots
func (h *IngestHandler) OpenSnapshot(c *gin.Context) {
	var req openSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.SnapshotDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_date must be YYYY-MM-DD"})
		return
	}

	snap, err := h.ingestor.BeginSnapshot(c.Request.Context(), date, req.SourceFiles, req.CategoryURLs)
	if err != nil {
		h.logger.WithError(err).Error("OpenSnapshot failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_id":   snap.ID,
		"snapshot_date": snap.SnapshotDate.Format("2006-01-02"),
		"batch_id":      snap.BatchID,
	})
}

type ingestBatchRequest struct {
	Listings []model.RawListing `json:"listings" binding:"required"`
}

// IngestBatch applies one source's listing batch to a snapshot.
// POST /api/ingest/snapshots/:id/:source
func (h *IngestHandler) IngestBatch(c *gin.Context) {
	snapshotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot id must be a number"})
		return
	}
	source := c.Param("source")

	var req ingestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.ingestor.IngestBatch(c.Request.Context(), snapshotID, source, req.Listings)
	if err != nil {
		h.logger.WithError(err).Error("IngestBatch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rejected := make([]gin.H, 0, len(res.Rejected))
	for _, re := range res.Rejected {
		rejected = append(rejected, gin.H{
			"index":  re.Index,
			"key":    re.Key,
			"reason": re.Reason,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot_id": res.SnapshotID,
		"source":      res.Source,
		"accepted":    res.Accepted,
		"rejected":    rejected,
	})
}
