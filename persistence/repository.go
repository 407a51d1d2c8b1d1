// Package persistence is the GORM implementation of domain.Storage. Entries
// and images use gorm.DeletedAt, so the soft-delete filter is applied on
// every default query and the rows stay physically present (retrievable with
// Unscoped for administrative inspection). Tokens are hard-deleted: consumed
// or superseded tokens are gone.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/identity"
	"github.com/pongsapak26/Bullet-Journal/journal"
)

type gormAuthToken struct {
	Token     string `gorm:"primaryKey"`
	Email     string `gorm:"index"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

func (gormAuthToken) TableName() string { return "auth_tokens" }

func fromAuthToken(t *domain.AuthToken) *gormAuthToken {
	return &gormAuthToken{
		Token:     t.Token,
		Email:     t.Email,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) AutoMigrate() error {
	err := r.db.AutoMigrate(
		&identity.User{},
		&journal.Entry{},
		&journal.Image{},
		&gormAuthToken{},
	)
	return domain.NewStoreError("migrate", err)
}

// ---- TokenStore ----

// ReplaceToken enforces the single-live-token invariant: the delete of prior
// tokens and the insert run in one transaction, so concurrent issuance for
// the same email cannot leave two live tokens behind.
func (r *Repository) ReplaceToken(ctx context.Context, token *domain.AuthToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", token.Email).Delete(&gormAuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(fromAuthToken(token)).Error
	})
	return domain.NewStoreError("replace token", err)
}

// ConsumeToken is a single conditional delete: value, email and expiry are
// all checked in the same statement, so two near-simultaneous calls with the
// same token get exactly one row between them.
func (r *Repository) ConsumeToken(ctx context.Context, token, email string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Where("token = ? AND email = ? AND expires_at > ?", token, email, now).
		Delete(&gormAuthToken{})
	if res.Error != nil {
		return domain.NewStoreError("consume token", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidOrExpiredToken
	}
	return nil
}

func (r *Repository) DeleteExpiredTokens(ctx context.Context, now time.Time) error {
	err := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&gormAuthToken{}).Error
	return domain.NewStoreError("sweep tokens", err)
}

// ---- UserStore ----

// UpsertUserByEmail resolves the account for email, creating it on first
// login. A concurrent create losing the unique-index race falls back to
// fetching the winner's row.
func (r *Repository) UpsertUserByEmail(ctx context.Context, email string) (*identity.Upsert, error) {
	var user identity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &identity.Upsert{User: &user, Created: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewStoreError("find user", err)
	}

	user = identity.User{ID: uuid.NewString(), Email: email}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost the race to another verify for the same email.
		var existing identity.User
		if ferr := r.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; ferr == nil {
			return &identity.Upsert{User: &existing, Created: false}, nil
		}
		return nil, domain.NewStoreError("create user", err)
	}
	return &identity.Upsert{User: &user, Created: true}, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("get user", err)
	}
	return &user, nil
}

// ---- EntryStore ----

func (r *Repository) CreateEntry(ctx context.Context, entry *journal.Entry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	return domain.NewStoreError("create entry", err)
}

func (r *Repository) GetEntryByOwner(ctx context.Context, id, ownerID string) (*journal.Entry, error) {
	var entry journal.Entry
	err := r.db.WithContext(ctx).
		Preload("Images").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("get entry", err)
	}
	return &entry, nil
}

func (r *Repository) ListEntriesByPeriod(ctx context.Context, ownerID string, p domain.Period) ([]journal.Entry, error) {
	q := r.db.WithContext(ctx).
		Preload("Images").
		Where("user_id = ?", ownerID)
	if p.Year != 0 {
		q = q.Where("year = ?", p.Year)
	}
	if p.Month != 0 {
		q = q.Where("month = ?", p.Month)
	}

	var result []journal.Entry
	if err := q.Order("day ASC").Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, domain.NewStoreError("list entries", err)
	}
	return result, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry *journal.Entry) error {
	err := r.db.WithContext(ctx).
		Omit("Images").
		Save(entry).Error
	return domain.NewStoreError("update entry", err)
}

// SoftDeleteEntry sets the entry's marker; gorm's Delete on a model with
// DeletedAt never removes the row. Images are deliberately not cascaded.
func (r *Repository) SoftDeleteEntry(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&journal.Entry{})
	if res.Error != nil {
		return domain.NewStoreError("delete entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddImages inserts the whole batch in one transaction. Any failed insert
// rolls back the rest, so the caller never sees a reduced count.
func (r *Repository) AddImages(ctx context.Context, images []journal.Image) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range images {
			if err := tx.Create(&images[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return domain.NewStoreError("add images", err)
}

// SoftDeleteImage checks ownership through the parent entry. The subquery is
// unscoped on entries so images orphaned by an entry soft delete stay
// deletable by their owner.
func (r *Repository) SoftDeleteImage(ctx context.Context, imageID, ownerID string) error {
	owned := r.db.WithContext(ctx).Unscoped().Model(&journal.Entry{}).
		Select("id").
		Where("user_id = ?", ownerID)

	res := r.db.WithContext(ctx).
		Where("id = ? AND entry_id IN (?)", imageID, owned).
		Delete(&journal.Image{})
	if res.Error != nil {
		return domain.NewStoreError("delete image", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) CountEntriesByStatus(ctx context.Context, ownerID string) (map[journal.Status]int64, error) {
	var rows []struct {
		Status journal.Status
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&journal.Entry{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.NewStoreError("count entries", err)
	}

	counts := make(map[journal.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
