package design

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/fabsketch-backend/internal/domain"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type DesignRepo interface {
	Create(ctx context.Context, tx *gorm.DB, design *types.GeneratedDesign) (*types.GeneratedDesign, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GeneratedDesign, error)
	ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) ([]*types.GeneratedDesign, error)
}

type designRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDesignRepo(db *gorm.DB, baseLog *logger.Logger) DesignRepo {
	repoLog := baseLog.With("repo", "DesignRepo")
	return &designRepo{db: db, log: repoLog}
}

func (r *designRepo) Create(ctx context.Context, tx *gorm.DB, design *types.GeneratedDesign) (*types.GeneratedDesign, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(design).Error; err != nil {
		return nil, err
	}
	return design, nil
}

func (r *designRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GeneratedDesign, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.GeneratedDesign
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *designRepo) ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) ([]*types.GeneratedDesign, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.GeneratedDesign
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
