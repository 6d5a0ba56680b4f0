package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dexbook/dexbook/internal/database"
	"github.com/dexbook/dexbook/internal/database/library"
	"github.com/dexbook/dexbook/internal/entities"
)

// LibraryController serves per-user reading state.
type LibraryController struct {
	repo *library.Repository
}

func NewLibraryController(repo *library.Repository) *LibraryController {
	return &LibraryController{repo: repo}
}

type linkRequest struct {
	BookID uint            `json:"book_id" binding:"required"`
	Status entities.Status `json:"status"`
}

// Link adds a catalog book to the user's library.
func (controller *LibraryController) Link(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "book_id is required"})
		return
	}

	entryID, err := controller.repo.Link(userID, req.BookID, req.Status)
	switch {
	case errors.Is(err, library.ErrAlreadyLinked):
		c.IndentedJSON(http.StatusConflict, gin.H{"error": "already in your library"})
	case errors.Is(err, library.ErrInvalidStatus):
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, library.ErrUnknownReference):
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "user or book not found"})
	case err != nil:
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not add the book"})
	default:
		c.IndentedJSON(http.StatusCreated, gin.H{"id": entryID})
	}
}

// Update applies a partial update to a library entry.
func (controller *LibraryController) Update(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var update library.EntryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}
	if update.CurrentPage == nil && update.Status == nil && update.Notes == nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	updated, err := controller.repo.Update(entryID, update)
	if errors.Is(err, library.ErrInvalidStatus) {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not update the entry"})
		return
	}
	if !updated {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	detail, err := controller.repo.GetByID(entryID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the entry"})
		return
	}
	c.IndentedJSON(http.StatusOK, detail)
}

// Unlink removes a library entry. The catalog is untouched.
func (controller *LibraryController) Unlink(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	removed, err := controller.repo.Unlink(entryID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not remove the entry"})
		return
	}
	if !removed {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Get returns one library entry joined with its catalog book.
func (controller *LibraryController) Get(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := controller.repo.GetByID(entryID)
	if errors.Is(err, database.ErrNotFound) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the entry"})
		return
	}
	c.IndentedJSON(http.StatusOK, detail)
}

// List returns the user's library, optionally filtered by ?status=.
func (controller *LibraryController) List(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var (
		details []entities.UserBookDetail
		err     error
	)
	if status := c.Query("status"); status != "" {
		details, err = controller.repo.ListForUserByStatus(userID, entities.Status(status))
		if errors.Is(err, library.ErrInvalidStatus) {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		details, err = controller.repo.ListForUser(userID)
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the library"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"entries": details, "count": len(details)})
}

// Stats returns the user's derived reading counts.
func (controller *LibraryController) Stats(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	stats, err := controller.repo.StatsForUser(userID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.IndentedJSON(http.StatusOK, stats)
}

// pathID parses a numeric path parameter, responding 400 itself on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
