package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository interface {
	Save(ctx context.Context, record *entity.SessionRecord) error
	Find(ctx context.Context, sid string) (*entity.SessionRecord, error)
	Touch(ctx context.Context, sid string, expire time.Time) error
	LinkUser(ctx context.Context, sid string, userID int64) error
	Delete(ctx context.Context, sid string) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteOtherByUser(ctx context.Context, userID int64, keepSID string) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Save(ctx context.Context, record *entity.SessionRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sid"}},
			UpdateAll: true,
		}).
		Create(record).
		Error
}

func (r *sessionRepository) Find(ctx context.Context, sid string) (*entity.SessionRecord, error) {
	var record entity.SessionRecord
	err := r.db.WithContext(ctx).
		Where("sid = ?", sid).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *sessionRepository) Touch(ctx context.Context, sid string, expire time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.SessionRecord{}).
		Where("sid = ?", sid).
		Update("expire", expire).
		Error
}

func (r *sessionRepository) LinkUser(ctx context.Context, sid string, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.SessionRecord{}).
		Where("sid = ?", sid).
		Update("userid", userID).
		Error
}

func (r *sessionRepository) Delete(ctx context.Context, sid string) error {
	return r.db.WithContext(ctx).
		Where("sid = ?", sid).
		Delete(&entity.SessionRecord{}).
		Error
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("userid = ?", userID).
		Delete(&entity.SessionRecord{}).
		Error
}

func (r *sessionRepository) DeleteOtherByUser(ctx context.Context, userID int64, keepSID string) error {
	return r.db.WithContext(ctx).
		Where("userid = ? AND sid != ?", userID, keepSID).
		Delete(&entity.SessionRecord{}).
		Error
}
