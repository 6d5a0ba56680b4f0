// Package catalog provides database operations for the shared book catalog.
//
// The catalog is the master, user-independent list of known books. Rows are
// created through insert-or-reuse semantics and never deleted by normal use.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	id, err := repo.AddOrReuse(catalog.BookInput{Title: "1984", Author: "George Orwell"})
package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dexbook/dexbook/internal/entities"
)

// ErrInvalidInput is returned when a candidate book lacks title or author.
var ErrInvalidInput = errors.New("title and author are required")

// bookColumns coalesces pages to 0 so rows migrated from databases that
// predate the pages default never surface a NULL to callers.
const bookColumns = "id, uuid, title, author, genre, cover, COALESCE(pages, 0) AS pages, isbn, description, created_at"

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BookInput carries the fields a caller may supply when adding a book.
// UUID and ISBN are optional; empty strings are stored as NULL.
type BookInput struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Cover       string `json:"cover"`
	Pages       int    `json:"pages"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

func (in *BookInput) normalize() {
	in.UUID = strings.TrimSpace(in.UUID)
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Cover = strings.TrimSpace(in.Cover)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Description = strings.TrimSpace(in.Description)
	if in.Pages < 0 {
		in.Pages = 0
	}
}

func (in BookInput) toBook() entities.Book {
	book := entities.Book{
		Title:       in.Title,
		Author:      in.Author,
		Genre:       in.Genre,
		Cover:       in.Cover,
		Pages:       in.Pages,
		Description: in.Description,
	}
	if in.UUID != "" {
		book.UUID = &in.UUID
	}
	if in.ISBN != "" {
		book.ISBN = &in.ISBN
	}
	return book
}

// AddOrReuse resolves the candidate to an existing catalog row before
// creating one. Lookup priority: UUID, then ISBN, then exact (title, author);
// the first match wins and its identifier is returned unchanged. The plain
// add path never merges candidate fields into an existing row.
func (r *Repository) AddOrReuse(input BookInput) (uint, error) {
	input.normalize()
	if input.Title == "" || input.Author == "" {
		return 0, ErrInvalidInput
	}

	if input.UUID != "" {
		id, err := r.findID("uuid = ?", input.UUID)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	if input.ISBN != "" {
		id, err := r.findID("isbn = ?", input.ISBN)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	id, err := r.findID("title = ? AND author = ?", input.Title, input.Author)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	book := input.toBook()
	if err := r.db.Create(&book).Error; err != nil {
		return 0, err
	}
	return book.ID, nil
}

// UpsertByUUID refreshes the stored metadata of the row matching the
// candidate's UUID and returns its identifier. Unlike AddOrReuse this path
// does overwrite fields; it is used when re-scanning a book whose catalog
// metadata may have changed upstream. Degrades to AddOrReuse when the
// candidate carries no UUID or the UUID is unknown.
func (r *Repository) UpsertByUUID(input BookInput) (uint, error) {
	input.normalize()
	if input.UUID == "" {
		return r.AddOrReuse(input)
	}
	if input.Title == "" || input.Author == "" {
		return 0, ErrInvalidInput
	}

	id, err := r.findID("uuid = ?", input.UUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.AddOrReuse(input)
	}
	if err != nil {
		return 0, err
	}

	updates := map[string]any{
		"title":       input.Title,
		"author":      input.Author,
		"genre":       input.Genre,
		"cover":       input.Cover,
		"pages":       input.Pages,
		"description": input.Description,
	}
	if input.ISBN != "" {
		updates["isbn"] = input.ISBN
	} else {
		updates["isbn"] = nil
	}

	if err := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) findID(query string, args ...any) (uint, error) {
	var book entities.Book
	err := r.db.Select("id").Take(&book, append([]any{query}, args...)...).Error
	if err != nil {
		return 0, err
	}
	return book.ID, nil
}

// GetByID retrieves a catalog book by its internal identifier.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Select(bookColumns).Take(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByUUID retrieves a catalog book by its external UUID.
func (r *Repository) GetByUUID(uuid string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Select(bookColumns).Take(&book, "uuid = ?", uuid).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListAll returns the whole catalog ordered by title.
func (r *Repository) ListAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Model(&entities.Book{}).
		Select(bookColumns).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// Search returns catalog books whose title or author contains the term
// (case-insensitive), ordered by title.
func (r *Repository) Search(term string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + term + "%"
	err := r.db.Model(&entities.Book{}).
		Select(bookColumns).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// ListUUIDs returns every non-null catalog UUID. Backs the QR debug screen.
func (r *Repository) ListUUIDs() ([]string, error) {
	var uuids []string
	err := r.db.Model(&entities.Book{}).
		Where("uuid IS NOT NULL").
		Pluck("uuid", &uuids).Error
	return uuids, err
}
