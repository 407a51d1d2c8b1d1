package journal

import (
	"time"

	"gorm.io/gorm"
)

// Status enumerates the lifecycle states of a journal entry.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Statuses lists every status, in dashboard display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}
}

// Entry is a journal record. The owner is fixed at creation. Day and Month
// are optional; Year always has a value (defaulted to the current calendar
// year on creation). DeletedAt is the soft-delete marker: reads filter on it
// being null, the row itself is never physically removed.
type Entry struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"index;not null" json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `gorm:"index" json:"status"`
	Day         *int           `json:"day"`
	Month       *int           `json:"month"`
	Year        int            `gorm:"index" json:"year"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Images []Image `gorm:"foreignKey:EntryID" json:"images"`
}

func (Entry) TableName() string { return "entries" }

// Image is an attachment belonging to exactly one entry. It carries its own
// soft-delete marker: soft-deleting the parent entry does not touch it, so
// every read must filter on the image marker, not the parent's.
type Image struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	EntryID   string         `gorm:"index;not null" json:"entry_id"`
	Data      string         `gorm:"type:text" json:"data"` // base64 payload
	Filename  string         `json:"filename"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Image) TableName() string { return "images" }
