package scan

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/dexbook/dexbook/internal/database/catalog"
	"github.com/dexbook/dexbook/internal/database/library"
	"github.com/dexbook/dexbook/internal/entities"
)

// Outcome tags the result of reconciling one scan event.
type Outcome string

const (
	// OutcomeAdded means the book was resolved and is now (again) being read.
	OutcomeAdded Outcome = "added"
	// OutcomeRejected means the payload itself was unusable.
	OutcomeRejected Outcome = "rejected"
	// OutcomeNotFound means the payload was fine but its UUID is not in the
	// catalog. Expected for foreign QR codes, not an error.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means storage broke mid-flight.
	OutcomeFailed Outcome = "failed"
)

// Result is the tagged outcome of a scan. Book is set only for OutcomeAdded;
// Message carries a short user-facing description otherwise. No raw storage
// error ever leaves this package through a Result.
type Result struct {
	Outcome Outcome        `json:"outcome"`
	Book    *entities.Book `json:"book,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Service resolves scanned payloads against the catalog and links the
// result into the scanning user's library.
//
// The service is not safe against overlapping calls for the same user and
// book from separate connections; the UI holds a single-flight flag while a
// scan is in progress, and the unique (user, book) constraint backstops the
// rest.
type Service struct {
	db *gorm.DB
}

// NewService creates a new reconciliation service on the shared handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Reconcile processes one scan event for userID: parse the payload, resolve
// its UUID against the catalog, and link or re-activate the book in the
// user's library with status reading. Re-scanning a book the user already
// has always flips it back to reading and refreshes started_at, completed
// or not.
func (s *Service) Reconcile(userID uint, rawPayload string) Result {
	if userID == 0 {
		return Result{Outcome: OutcomeRejected, Message: "sign in to add books"}
	}

	doc, err := Parse(rawPayload)
	if err != nil {
		log.Printf("Scan rejected for user %d: %v", userID, err)
		return Result{Outcome: OutcomeRejected, Message: "could not parse the QR code as JSON"}
	}

	book, err := Extract(doc)
	if err != nil {
		log.Printf("Scan rejected for user %d: %v", userID, err)
		return Result{Outcome: OutcomeRejected, Message: "the QR code must contain uuid, title and author"}
	}

	// Resolution is by UUID only: a scan references a pre-seeded catalog
	// entry, so there is no fallback to ISBN or title/author here.
	resolved, err := catalog.NewRepository(s.db).GetByUUID(book.UUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{Outcome: OutcomeNotFound, Message: "this book is not in the catalog"}
	}
	if err != nil {
		log.Printf("Scan lookup failed for user %d, uuid %s: %v", userID, book.UUID, err)
		return Result{Outcome: OutcomeFailed, Message: "something went wrong, please try again"}
	}

	// Link-or-reactivate runs inside one transaction so a second scan of the
	// same code cannot interleave between the insert and the update.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := library.NewRepository(tx)
		_, err := repo.Link(userID, resolved.ID, entities.StatusReading)
		if errors.Is(err, library.ErrAlreadyLinked) {
			detail, err := repo.GetByUserAndBook(userID, resolved.ID)
			if err != nil {
				return err
			}
			status := entities.StatusReading
			_, err = repo.Update(detail.EntryID, library.EntryUpdate{Status: &status})
			return err
		}
		return err
	})
	if err != nil {
		log.Printf("Scan link failed for user %d, book %d: %v", userID, resolved.ID, err)
		return Result{Outcome: OutcomeFailed, Message: "something went wrong, please try again"}
	}

	return Result{Outcome: OutcomeAdded, Book: resolved}
}
