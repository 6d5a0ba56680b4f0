// Package library provides database operations for per-user reading state.
//
// Every read joins catalog fields onto the per-user fields in a single
// denormalized shape (entities.UserBookDetail): all consumers need both
// halves together, and joining at read time avoids duplicating catalog data
// at rest.
package library

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dexbook/dexbook/internal/database"
	"github.com/dexbook/dexbook/internal/entities"
)

var (
	// ErrAlreadyLinked signals that the (user, book) pair is already in the
	// library. A benign no-op for callers, not a failure.
	ErrAlreadyLinked = errors.New("book already in user library")

	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid reading status")

	// ErrUnknownReference is returned when the user or book a link points at
	// does not exist.
	ErrUnknownReference = errors.New("user or book does not exist")
)

// detailColumns is the denormalized read shape: the entry id is aliased
// apart from the catalog id, and pages is coalesced so callers can do
// arithmetic without null checks.
const detailColumns = `
	ub.id AS entry_id,
	b.id AS book_id,
	b.uuid,
	b.title,
	b.author,
	b.genre,
	b.cover,
	COALESCE(b.pages, 0) AS pages,
	b.isbn,
	b.description,
	ub.current_page,
	ub.status,
	ub.notes,
	ub.started_at,
	ub.completed_at,
	ub.created_at`

// Repository handles all user library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EntryUpdate is a partial update: only non-nil fields are written.
// StartedAt is honored only together with a transition into reading, as an
// explicit override of the automatic timestamp.
type EntryUpdate struct {
	CurrentPage *int             `json:"current_page"`
	Status      *entities.Status `json:"status"`
	Notes       *string          `json:"notes"`
	StartedAt   *time.Time       `json:"started_at"`
}

// Link inserts a library entry for the (user, book) pair. There is no
// existence pre-check: the unique constraint is the sole duplicate detection,
// which closes the check-then-insert race between concurrent callers. A
// constraint violation surfaces as ErrAlreadyLinked.
func (r *Repository) Link(userID, bookID uint, status entities.Status) (uint, error) {
	if status == "" {
		status = entities.StatusWishlist
	}
	if !status.Valid() {
		return 0, ErrInvalidStatus
	}

	entry := entities.UserBook{
		UserID: userID,
		BookID: bookID,
		Status: status,
	}
	if status == entities.StatusReading {
		now := time.Now()
		entry.StartedAt = &now
	}

	if err := r.db.Create(&entry).Error; err != nil {
		if database.IsUniqueConstraint(err) {
			return 0, ErrAlreadyLinked
		}
		if database.IsForeignKeyConstraint(err) {
			return 0, ErrUnknownReference
		}
		return 0, err
	}
	return entry.ID, nil
}

// Update applies a partial update to a library entry. Transitioning into
// reading stamps started_at unless the caller supplied one; transitioning
// into completed always refreshes completed_at, even on repeat completions.
// An empty update is a no-op returning false; true means a row was changed.
func (r *Repository) Update(entryID uint, update EntryUpdate) (bool, error) {
	fields := map[string]any{}

	if update.CurrentPage != nil {
		page := *update.CurrentPage
		if page < 0 {
			page = 0
		}
		fields["current_page"] = page
	}
	if update.Status != nil {
		status := *update.Status
		if !status.Valid() {
			return false, ErrInvalidStatus
		}
		fields["status"] = status

		switch status {
		case entities.StatusReading:
			if update.StartedAt != nil {
				fields["started_at"] = *update.StartedAt
			} else {
				fields["started_at"] = time.Now()
			}
		case entities.StatusCompleted:
			fields["completed_at"] = time.Now()
		}
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}

	if len(fields) == 0 {
		return false, nil
	}

	result := r.db.Model(&entities.UserBook{}).Where("id = ?", entryID).Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Unlink removes a library entry. The catalog row is untouched. Returns
// whether a row was actually removed.
func (r *Repository) Unlink(entryID uint) (bool, error) {
	result := r.db.Delete(&entities.UserBook{}, entryID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID returns one library entry joined with its catalog book.
func (r *Repository) GetByID(entryID uint) (*entities.UserBookDetail, error) {
	var detail entities.UserBookDetail
	result := r.db.Raw(`
		SELECT `+detailColumns+`
		FROM user_books ub
		INNER JOIN books b ON ub.book_id = b.id
		WHERE ub.id = ?`, entryID).Scan(&detail)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &detail, nil
}

// GetByUserAndBook returns the entry for a (user, book) pair, if any.
func (r *Repository) GetByUserAndBook(userID, bookID uint) (*entities.UserBookDetail, error) {
	var detail entities.UserBookDetail
	result := r.db.Raw(`
		SELECT `+detailColumns+`
		FROM user_books ub
		INNER JOIN books b ON ub.book_id = b.id
		WHERE ub.user_id = ? AND ub.book_id = ?`, userID, bookID).Scan(&detail)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &detail, nil
}

// ListForUser returns a user's library, most recently added first.
func (r *Repository) ListForUser(userID uint) ([]entities.UserBookDetail, error) {
	var details []entities.UserBookDetail
	err := r.db.Raw(`
		SELECT `+detailColumns+`
		FROM user_books ub
		INNER JOIN books b ON ub.book_id = b.id
		WHERE ub.user_id = ?
		ORDER BY ub.created_at DESC, ub.id DESC`, userID).Scan(&details).Error
	return details, err
}

// ListForUserByStatus returns the subset of a user's library in one status,
// most recently added first.
func (r *Repository) ListForUserByStatus(userID uint, status entities.Status) ([]entities.UserBookDetail, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	var details []entities.UserBookDetail
	err := r.db.Raw(`
		SELECT `+detailColumns+`
		FROM user_books ub
		INNER JOIN books b ON ub.book_id = b.id
		WHERE ub.user_id = ? AND ub.status = ?
		ORDER BY ub.created_at DESC, ub.id DESC`, userID, status).Scan(&details).Error
	return details, err
}

// StatsForUser derives per-user counts in a single grouped read. Never
// persisted, always recomputed from current join-table contents; all counts
// are 0 for a user with no entries.
func (r *Repository) StatsForUser(userID uint) (entities.ReadingStats, error) {
	var stats entities.ReadingStats
	err := r.db.Raw(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'reading'   THEN 1 ELSE 0 END), 0) AS reading,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = 'wishlist'  THEN 1 ELSE 0 END), 0) AS wishlist
		FROM user_books
		WHERE user_id = ?`, userID).Scan(&stats).Error
	return stats, err
}
