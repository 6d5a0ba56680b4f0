package entities

import (
	"time"
)

// Status is the coarse reading state of a library entry.
type Status string

const (
	StatusWishlist  Status = "wishlist"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWishlist, StatusReading, StatusCompleted:
		return true
	}
	return false
}

// User is a peer concern of the core: the library join table references it,
// but authentication happens outside this process.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	Password  string    `gorm:"size:100" json:"-"` // bcrypt hash, hidden from JSON
	CreatedAt time.Time `json:"created_at"`
}

// Book is a catalog entry, independent of any user.
//
// UUID and ISBN are pointers so that books without them store NULL rather
// than an empty string; SQLite unique indexes permit any number of NULLs,
// which keeps the uniqueness invariant workable for optional keys.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        *string   `gorm:"uniqueIndex;size:36" json:"uuid,omitempty"`
	Title       string    `gorm:"uniqueIndex:idx_books_title_author;size:512" json:"title"`
	Author      string    `gorm:"uniqueIndex:idx_books_title_author;size:256" json:"author"`
	Genre       string    `gorm:"size:100" json:"genre,omitempty"`
	Cover       string    `gorm:"size:2048" json:"cover,omitempty"`
	Pages       int       `gorm:"default:0" json:"pages"`
	ISBN        *string   `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBook links a user to a catalog book with per-user reading state.
// At most one row may exist per (user, book) pair.
type UserBook struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex:idx_user_books_user_book" json:"user_id"`
	BookID      uint       `gorm:"uniqueIndex:idx_user_books_user_book" json:"book_id"`
	CurrentPage int        `gorm:"default:0" json:"current_page"`
	Status      Status     `gorm:"size:20;default:'wishlist'" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
	Book        Book       `gorm:"foreignKey:BookID" json:"-"`
}

// UserBookDetail is the denormalized read shape every library consumer gets:
// catalog fields joined onto the per-user fields at read time, so catalog
// data is never duplicated at rest.
type UserBookDetail struct {
	EntryID     uint       `json:"entry_id"`
	BookID      uint       `json:"book_id"`
	UUID        *string    `json:"uuid,omitempty"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre,omitempty"`
	Cover       string     `json:"cover,omitempty"`
	Pages       int        `json:"pages"`
	ISBN        *string    `json:"isbn,omitempty"`
	Description string     `json:"description,omitempty"`
	CurrentPage int        `json:"current_page"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ReadingStats are per-user counts derived from the library join table.
type ReadingStats struct {
	Total     int64 `json:"total"`
	Reading   int64 `json:"reading"`
	Completed int64 `json:"completed"`
	Wishlist  int64 `json:"wishlist"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (UserBook) TableName() string {
	return "user_books"
}
