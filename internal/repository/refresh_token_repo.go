package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrTokenNotFound covers both unknown and already-consumed tokens: a
	// replayed value is indistinguishable from one that never existed.
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("refresh token expired")
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteOtherByUser(ctx context.Context, userID int64, keepToken string) error
	Rotate(ctx context.Context, presented string, next *entity.RefreshToken, now time.Time) (*entity.User, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&entity.RefreshToken{}).
		Error
}

func (r *refreshTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("userid = ?", userID).
		Delete(&entity.RefreshToken{}).
		Error
}

func (r *refreshTokenRepository) DeleteOtherByUser(ctx context.Context, userID int64, keepToken string) error {
	return r.db.WithContext(ctx).
		Where("userid = ? AND token != ?", userID, keepToken).
		Delete(&entity.RefreshToken{}).
		Error
}

// Rotate consumes the presented token and installs next in its place, all in
// one transaction. The SELECT ... FOR UPDATE on the presented row is the
// serialization point: of two concurrent rotations of the same value, the
// loser observes the row as gone and gets ErrTokenNotFound.
//
// An expired row is deleted and the delete committed before the error is
// reported, so expired tokens are purged opportunistically on use.
func (r *refreshTokenRepository) Rotate(ctx context.Context, presented string, next *entity.RefreshToken, now time.Time) (*entity.User, error) {
	var (
		user    entity.User
		expired bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.RefreshToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ?", presented).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		if now.After(current.Expire) {
			// Commit the purge, then reject.
			expired = true
			return tx.Where("token = ?", presented).
				Delete(&entity.RefreshToken{}).
				Error
		}

		next.UserID = current.UserID

		if err := tx.Where("token = ?", presented).
			Delete(&entity.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Create(next).Error; err != nil {
			return err
		}

		err = tx.Where("id = ?", current.UserID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Referential anomaly: roll the swap back rather than leave a
			// token pointing at a missing user.
			return ErrTokenNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrTokenExpired
	}
	return &user, nil
}
