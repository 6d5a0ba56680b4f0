package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dexbook/dexbook/internal/database"
	"github.com/dexbook/dexbook/internal/database/catalog"
	"github.com/dexbook/dexbook/internal/entities"
)

// CatalogController serves the shared book catalog.
type CatalogController struct {
	repo *catalog.Repository
}

func NewCatalogController(repo *catalog.Repository) *CatalogController {
	return &CatalogController{repo: repo}
}

// List returns the whole catalog, or a search when ?q= is present.
func (controller *CatalogController) List(c *gin.Context) {
	term := c.Query("q")

	var (
		books []entities.Book
		err   error
	)
	if term != "" {
		books, err = controller.repo.Search(term)
	} else {
		books, err = controller.repo.ListAll()
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the catalog"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// Add resolves-or-creates a catalog entry and returns its identifier.
func (controller *CatalogController) Add(c *gin.Context) {
	var input catalog.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid book payload"})
		return
	}

	id, err := controller.repo.AddOrReuse(input)
	if errors.Is(err, catalog.ErrInvalidInput) {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not save the book"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"id": id})
}

// Upsert refreshes catalog metadata keyed on UUID.
func (controller *CatalogController) Upsert(c *gin.Context) {
	var input catalog.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid book payload"})
		return
	}

	id, err := controller.repo.UpsertByUUID(input)
	if errors.Is(err, catalog.ErrInvalidInput) {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not save the book"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"id": id})
}

// GetByID returns one catalog book by internal identifier.
func (controller *CatalogController) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	book, err := controller.repo.GetByID(uint(id))
	if errors.Is(err, database.ErrNotFound) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the book"})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// GetByUUID returns one catalog book by its external UUID.
func (controller *CatalogController) GetByUUID(c *gin.Context) {
	book, err := controller.repo.GetByUUID(c.Param("uuid"))
	if errors.Is(err, database.ErrNotFound) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the book"})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// ListUUIDs returns every catalog UUID. Backs the QR debug screen.
func (controller *CatalogController) ListUUIDs(c *gin.Context) {
	uuids, err := controller.repo.ListUUIDs()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "could not load the catalog"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"uuids": uuids})
}
