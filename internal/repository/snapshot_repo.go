package repository

import (
	"context"
	"time"

	"CatalogSync/internal/model"

	"gorm.io/gorm"
)

// SnapshotRepository manages the append-only capture log. Snapshots are
// created once per run and never updated.
type SnapshotRepository interface {
	// CreateSnapshot appends a new capture row and fills its id.
	CreateSnapshot(ctx context.Context, s *model.Snapshot) error
	// GetSnapshot fetches one snapshot by id.
	GetSnapshot(ctx context.Context, id uint64) (*model.Snapshot, error)
	// LatestSnapshotID returns the id of the most recent snapshot.
	LatestSnapshotID(ctx context.Context) (uint64, error)
	// SnapshotIDByDate returns the newest snapshot taken on the given date.
	SnapshotIDByDate(ctx context.Context, date time.Time) (uint64, error)
	// ListSnapshots returns up to limit snapshots, newest first.
	ListSnapshots(ctx context.Context, limit int) ([]*model.Snapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) CreateSnapshot(ctx context.Context, s *model.Snapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *snapshotRepository) GetSnapshot(ctx context.Context, id uint64) (*model.Snapshot, error) {
	var s model.Snapshot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *snapshotRepository) LatestSnapshotID(ctx context.Context) (uint64, error) {
	var s model.Snapshot
	if err := r.db.WithContext(ctx).
		Order("snapshot_date DESC, id DESC").
		First(&s).Error; err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (r *snapshotRepository) SnapshotIDByDate(ctx context.Context, date time.Time) (uint64, error) {
	var s model.Snapshot
	if err := r.db.WithContext(ctx).
		Where("snapshot_date = ?", date.Format("2006-01-02")).
		Order("id DESC").
		First(&s).Error; err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (r *snapshotRepository) ListSnapshots(ctx context.Context, limit int) ([]*model.Snapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	var list []*model.Snapshot
	if err := r.db.WithContext(ctx).
		Order("snapshot_date DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
