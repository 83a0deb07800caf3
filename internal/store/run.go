package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/store/model"
)

type Run interface {
	Create(ctx context.Context, run *model.UploadRun) error
	Get(ctx context.Context, id uuid.UUID) (*model.UploadRun, error)
	LatestByAudience(ctx context.Context, audienceID string) (*model.UploadRun, error)
	Update(ctx context.Context, id uuid.UUID, updates *model.UploadRun) error
}

type RunStore struct {
	db *gorm.DB
}

var _ Run = (*RunStore)(nil)

func NewRunStore(db *gorm.DB) Run {
	return &RunStore{db: db}
}

func (s *RunStore) Create(ctx context.Context, run *model.UploadRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(run).Error
}

func (s *RunStore) Get(ctx context.Context, id uuid.UUID) (*model.UploadRun, error) {
	var run model.UploadRun
	result := s.db.WithContext(ctx).First(&run, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &run, nil
}

// LatestByAudience returns the most recent run for an audience; the verifier
// uses it to attach its outcome to the upload that scheduled it.
func (s *RunStore) LatestByAudience(ctx context.Context, audienceID string) (*model.UploadRun, error) {
	var run model.UploadRun
	result := s.db.WithContext(ctx).
		Where("audience_id = ?", audienceID).
		Order("created_at DESC").
		First(&run)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &run, nil
}

func (s *RunStore) Update(ctx context.Context, id uuid.UUID, updates *model.UploadRun) error {
	result := s.db.WithContext(ctx).Model(&model.UploadRun{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
