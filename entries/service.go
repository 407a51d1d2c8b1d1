// Package entries is the ownership-scoped record service. Every operation
// takes the session credential as an explicit parameter, re-fetches the
// target scoped by owner and live marker, and never trusts a client-supplied
// owner field. Missing session -> ErrUnauthorized; owned-by-someone-else and
// soft-deleted targets -> ErrNotFound, indistinguishable from rows that do
// not exist.
package entries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/journal"
	"github.com/pongsapak26/Bullet-Journal/session"
)

type Service struct {
	store domain.EntryStore
}

func NewService(store domain.EntryStore) *Service {
	return &Service{store: store}
}

// ImageInput is one attachment payload.
type ImageInput struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
}

// CreateInput carries the fields for a new entry. Year defaults to the
// current calendar year when zero.
type CreateInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      journal.Status `json:"status"`
	Day         *int           `json:"day"`
	Month       *int           `json:"month"`
	Year        int            `json:"year"`
	Images      []ImageInput   `json:"images"`
}

// UpdateInput carries partial updates. Nil pointers leave the field alone;
// ClearDay/ClearMonth drop the temporal placement back to null.
type UpdateInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *journal.Status `json:"status"`
	Day         *int            `json:"day"`
	Month       *int            `json:"month"`
	Year        *int            `json:"year"`
	ClearDay    bool            `json:"clearDay"`
	ClearMonth  bool            `json:"clearMonth"`
}

func guard(sess *session.Claims) error {
	if sess == nil || sess.UserID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// List returns the caller's live entries for the period, ordered by day
// ascending then creation time descending.
func (s *Service) List(ctx context.Context, sess *session.Claims, p domain.Period) ([]journal.Entry, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}
	if err := validatePeriod(p.Year, p.Month); err != nil {
		return nil, err
	}
	return s.store.ListEntriesByPeriod(ctx, sess.UserID, p)
}

// Get returns one live entry owned by the caller, with its live images.
func (s *Service) Get(ctx context.Context, sess *session.Claims, id string) (*journal.Entry, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}
	return s.store.GetEntryByOwner(ctx, id, sess.UserID)
}

// Create persists a new entry owned by the caller. Attached images are
// created in the same transactional unit as the entry.
func (s *Service) Create(ctx context.Context, sess *session.Claims, in CreateInput) (*journal.Entry, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = journal.StatusTodo
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("entries: unknown status %q: %w", in.Status, domain.ErrValidation)
	}
	if in.Year == 0 {
		in.Year = time.Now().Year()
	}
	if err := validatePlacement(in.Year, in.Month, in.Day); err != nil {
		return nil, err
	}

	entry := &journal.Entry{
		ID:          uuid.NewString(),
		UserID:      sess.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Day:         in.Day,
		Month:       in.Month,
		Year:        in.Year,
	}
	for _, img := range in.Images {
		entry.Images = append(entry.Images, journal.Image{
			ID:       uuid.NewString(),
			EntryID:  entry.ID,
			Data:     img.Data,
			Filename: img.Filename,
		})
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies a partial update to an entry the caller owns. The target is
// re-fetched scoped by owner and live marker before mutating.
func (s *Service) Update(ctx context.Context, sess *session.Claims, id string, in UpdateInput) (*journal.Entry, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}

	entry, err := s.store.GetEntryByOwner(ctx, id, sess.UserID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		entry.Title = *in.Title
	}
	if in.Description != nil {
		entry.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("entries: unknown status %q: %w", *in.Status, domain.ErrValidation)
		}
		entry.Status = *in.Status
	}
	if in.Year != nil {
		entry.Year = *in.Year
	}
	if in.Day != nil {
		entry.Day = in.Day
	}
	if in.Month != nil {
		entry.Month = in.Month
	}
	if in.ClearDay {
		entry.Day = nil
	}
	if in.ClearMonth {
		entry.Month = nil
	}
	if err := validatePlacement(entry.Year, entry.Month, entry.Day); err != nil {
		return nil, err
	}

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete soft-deletes an entry the caller owns. The row stays in the store
// with its marker set; it only disappears from reads. Images keep their own
// markers and are not cascaded.
func (s *Service) Delete(ctx context.Context, sess *session.Claims, id string) error {
	if err := guard(sess); err != nil {
		return err
	}
	return s.store.SoftDeleteEntry(ctx, id, sess.UserID)
}

// AddImages attaches a batch of images to an entry the caller owns. The
// batch is all-or-nothing: a partial failure surfaces as an error, never as
// a reduced count.
func (s *Service) AddImages(ctx context.Context, sess *session.Claims, entryID string, inputs []ImageInput) ([]journal.Image, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("entries: empty image batch: %w", domain.ErrValidation)
	}

	// Ownership check before touching image rows.
	if _, err := s.store.GetEntryByOwner(ctx, entryID, sess.UserID); err != nil {
		return nil, err
	}

	images := make([]journal.Image, 0, len(inputs))
	for _, in := range inputs {
		if in.Data == "" {
			return nil, fmt.Errorf("entries: image without payload: %w", domain.ErrValidation)
		}
		images = append(images, journal.Image{
			ID:       uuid.NewString(),
			EntryID:  entryID,
			Data:     in.Data,
			Filename: in.Filename,
		})
	}

	if err := s.store.AddImages(ctx, images); err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteImage soft-deletes one image, provided its parent entry belongs to
// the caller.
func (s *Service) DeleteImage(ctx context.Context, sess *session.Claims, imageID string) error {
	if err := guard(sess); err != nil {
		return err
	}
	return s.store.SoftDeleteImage(ctx, imageID, sess.UserID)
}

// Stats counts the caller's live entries per status. Every status appears in
// the result, zero-valued when absent.
func (s *Service) Stats(ctx context.Context, sess *session.Claims) (map[journal.Status]int64, error) {
	if err := guard(sess); err != nil {
		return nil, err
	}
	counts, err := s.store.CountEntriesByStatus(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	for _, st := range journal.Statuses() {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

func validatePeriod(year, month int) error {
	if year < 0 || (month != 0 && (month < 1 || month > 12)) {
		return fmt.Errorf("entries: invalid period %d/%d: %w", year, month, domain.ErrValidation)
	}
	return nil
}

func validatePlacement(year int, month, day *int) error {
	if year < 1 {
		return fmt.Errorf("entries: invalid year %d: %w", year, domain.ErrValidation)
	}
	if month != nil && (*month < 1 || *month > 12) {
		return fmt.Errorf("entries: invalid month %d: %w", *month, domain.ErrValidation)
	}
	if day != nil && (*day < 1 || *day > 31) {
		return fmt.Errorf("entries: invalid day %d: %w", *day, domain.ErrValidation)
	}
	return nil
}
