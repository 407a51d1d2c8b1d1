// Package domain defines the core contracts of the journal: the error
// taxonomy, the token store, and the persistence interfaces every storage
// backend must fulfill. See the persistence package for the GORM
// implementation.
package domain

import (
	"context"

	"github.com/pongsapak26/Bullet-Journal/identity"
	"github.com/pongsapak26/Bullet-Journal/journal"
)

// Storage is the composite interface for all persistence operations.
type Storage interface {
	UserStore
	EntryStore
	TokenStore
}

// UserStore handles account persistence.
type UserStore interface {
	// UpsertUserByEmail returns the existing user for email or creates one,
	// tagging the result so callers can distinguish first login.
	UpsertUserByEmail(ctx context.Context, email string) (*identity.Upsert, error)
	GetUser(ctx context.Context, id string) (*identity.User, error)
}

// Period selects entries by temporal placement. Zero Month means the whole
// year; zero Year means no period filter at all.
type Period struct {
	Year  int
	Month int
}

// EntryStore handles journal entries and their images. Every method that
// takes an ownerID scopes its query to rows owned by that account with a
// null soft-delete marker, and returns ErrNotFound otherwise.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *journal.Entry) error
	GetEntryByOwner(ctx context.Context, id, ownerID string) (*journal.Entry, error)
	ListEntriesByPeriod(ctx context.Context, ownerID string, p Period) ([]journal.Entry, error)
	UpdateEntry(ctx context.Context, entry *journal.Entry) error
	SoftDeleteEntry(ctx context.Context, id, ownerID string) error

	// AddImages inserts the batch as one transactional unit: either every
	// image row is created or none is.
	AddImages(ctx context.Context, images []journal.Image) error
	SoftDeleteImage(ctx context.Context, imageID, ownerID string) error

	// CountEntriesByStatus counts the caller's live entries per status.
	CountEntriesByStatus(ctx context.Context, ownerID string) (map[journal.Status]int64, error)
}

// LinkSender delivers a magic link out of band. Delivery transport is
// outside this core; the default implementation just logs the link.
type LinkSender interface {
	SendMagicLink(ctx context.Context, email, link string) error
}
