package library

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dexbook/dexbook/internal/database"
	"github.com/dexbook/dexbook/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_library_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.Book{}, &entities.UserBook{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	user := entities.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createBook(t *testing.T, db *gorm.DB, title string) uint {
	t.Helper()
	book := entities.Book{Title: title, Author: "Author of " + title}
	require.NoError(t, db.Create(&book).Error)
	return book.ID
}

func entryCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.UserBook{}).Count(&count).Error)
	return count
}

func TestRepository_Link_DefaultsToWishlist(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "1984")

	entryID, err := repo.Link(userID, bookID, "")
	require.NoError(t, err)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusWishlist, detail.Status)
	assert.Nil(t, detail.StartedAt)
	assert.Nil(t, detail.CompletedAt)
	assert.Equal(t, 0, detail.CurrentPage)
}

func TestRepository_Link_ReadingStampsStartedAt(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "1984")

	entryID, err := repo.Link(userID, bookID, entities.StatusReading)
	require.NoError(t, err)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReading, detail.Status)
	require.NotNil(t, detail.StartedAt)
	assert.WithinDuration(t, time.Now(), *detail.StartedAt, 5*time.Second)
}

func TestRepository_Link_DuplicatePair(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "1984")

	_, err := repo.Link(userID, bookID, entities.StatusWishlist)
	require.NoError(t, err)

	_, err = repo.Link(userID, bookID, entities.StatusReading)
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.Equal(t, int64(1), entryCount(t, db))
}

func TestRepository_Link_SameBookDifferentUsers(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	bookID := createBook(t, db, "1984")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := repo.Link(alice, bookID, entities.StatusReading)
	require.NoError(t, err)
	_, err = repo.Link(bob, bookID, entities.StatusReading)
	require.NoError(t, err)

	assert.Equal(t, int64(2), entryCount(t, db))
}

func TestRepository_Link_InvalidStatus(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "1984")

	_, err := repo.Link(userID, bookID, "abandoned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, int64(0), entryCount(t, db))
}

func TestRepository_Link_UnknownReferences(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")

	_, err := repo.Link(userID, 9999, entities.StatusWishlist)
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = repo.Link(9999, createBook(t, db, "1984"), entities.StatusWishlist)
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestRepository_Update_TransitionToReading(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	entryID, err := repo.Link(userID, createBook(t, db, "1984"), entities.StatusWishlist)
	require.NoError(t, err)

	status := entities.StatusReading
	updated, err := repo.Update(entryID, EntryUpdate{Status: &status})
	require.NoError(t, err)
	assert.True(t, updated)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReading, detail.Status)
	require.NotNil(t, detail.StartedAt)
	assert.WithinDuration(t, time.Now(), *detail.StartedAt, 5*time.Second)
}

func TestRepository_Update_TransitionToReadingHonorsExplicitStart(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	entryID, err := repo.Link(userID, createBook(t, db, "1984"), entities.StatusWishlist)
	require.NoError(t, err)

	startedAt := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	status := entities.StatusReading
	updated, err := repo.Update(entryID, EntryUpdate{Status: &status, StartedAt: &startedAt})
	require.NoError(t, err)
	assert.True(t, updated)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	require.NotNil(t, detail.StartedAt)
	assert.WithinDuration(t, startedAt, *detail.StartedAt, time.Second)
}

func TestRepository_Update_CompletedRefreshesTimestamp(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	entryID, err := repo.Link(userID, createBook(t, db, "1984"), entities.StatusReading)
	require.NoError(t, err)

	status := entities.StatusCompleted
	_, err = repo.Update(entryID, EntryUpdate{Status: &status})
	require.NoError(t, err)

	first, err := repo.GetByID(entryID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	time.Sleep(20 * time.Millisecond)

	// Completing again refreshes completed_at rather than keeping the
	// original timestamp.
	_, err = repo.Update(entryID, EntryUpdate{Status: &status})
	require.NoError(t, err)

	second, err := repo.GetByID(entryID)
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, second.CompletedAt.After(*first.CompletedAt))
}

func TestRepository_Update_EmptyIsNoOp(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	entryID, err := repo.Link(userID, createBook(t, db, "1984"), entities.StatusWishlist)
	require.NoError(t, err)

	updated, err := repo.Update(entryID, EntryUpdate{})
	require.NoError(t, err)
	assert.False(t, updated)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusWishlist, detail.Status)
}

func TestRepository_Update_ClampsNegativePage(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	entryID, err := repo.Link(userID, createBook(t, db, "1984"), entities.StatusReading)
	require.NoError(t, err)

	page := -42
	updated, err := repo.Update(entryID, EntryUpdate{CurrentPage: &page})
	require.NoError(t, err)
	assert.True(t, updated)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.CurrentPage)
}

func TestRepository_Update_InvalidStatus(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	entryID, err := repo.Link(userID, createBook(t, db, "1984"), entities.StatusWishlist)
	require.NoError(t, err)

	bad := entities.Status("paused")
	_, err = repo.Update(entryID, EntryUpdate{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRepository_Update_UnknownEntry(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	status := entities.StatusReading
	updated, err := repo.Update(9999, EntryUpdate{Status: &status})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestRepository_Unlink(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "1984")
	entryID, err := repo.Link(userID, bookID, entities.StatusWishlist)
	require.NoError(t, err)

	removed, err := repo.Unlink(entryID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.GetByID(entryID)
	assert.True(t, errors.Is(err, database.ErrNotFound))

	// The catalog row survives the unlink.
	var book entities.Book
	assert.NoError(t, db.Take(&book, bookID).Error)

	removed, err = repo.Unlink(entryID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepository_GetByUserAndBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "1984")

	_, err := repo.GetByUserAndBook(userID, bookID)
	assert.True(t, errors.Is(err, database.ErrNotFound))

	entryID, err := repo.Link(userID, bookID, entities.StatusReading)
	require.NoError(t, err)

	detail, err := repo.GetByUserAndBook(userID, bookID)
	require.NoError(t, err)
	assert.Equal(t, entryID, detail.EntryID)
	assert.Equal(t, bookID, detail.BookID)
	assert.Equal(t, "1984", detail.Title)
}

func TestRepository_NullBookPagesReadAsZero(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	bookID := createBook(t, db, "Legacy Row")
	// Rows written before the pages default existed carry NULL.
	require.NoError(t, db.Exec("UPDATE books SET pages = NULL WHERE id = ?", bookID).Error)

	entryID, err := repo.Link(userID, bookID, entities.StatusReading)
	require.NoError(t, err)

	detail, err := repo.GetByID(entryID)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.Pages)

	byPair, err := repo.GetByUserAndBook(userID, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, byPair.Pages)

	list, err := repo.ListForUser(userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].Pages)

	reading, err := repo.ListForUserByStatus(userID, entities.StatusReading)
	require.NoError(t, err)
	require.Len(t, reading, 1)
	assert.Equal(t, 0, reading[0].Pages)
}

func TestRepository_ListForUser_MostRecentFirst(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	var entryIDs []uint
	for i := 0; i < 3; i++ {
		bookID := createBook(t, db, fmt.Sprintf("Book %d", i))
		entryID, err := repo.Link(userID, bookID, entities.StatusWishlist)
		require.NoError(t, err)
		entryIDs = append(entryIDs, entryID)
	}

	details, err := repo.ListForUser(userID)
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, entryIDs[2], details[0].EntryID)
	assert.Equal(t, entryIDs[1], details[1].EntryID)
	assert.Equal(t, entryIDs[0], details[2].EntryID)
}

func TestRepository_ListForUserByStatus(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	_, err := repo.Link(userID, createBook(t, db, "Reading One"), entities.StatusReading)
	require.NoError(t, err)
	_, err = repo.Link(userID, createBook(t, db, "Wish One"), entities.StatusWishlist)
	require.NoError(t, err)

	reading, err := repo.ListForUserByStatus(userID, entities.StatusReading)
	require.NoError(t, err)
	require.Len(t, reading, 1)
	assert.Equal(t, "Reading One", reading[0].Title)

	_, err = repo.ListForUserByStatus(userID, "abandoned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRepository_StatsForUser(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	empty, err := repo.StatsForUser(userID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReadingStats{}, empty)

	_, err = repo.Link(userID, createBook(t, db, "A"), entities.StatusReading)
	require.NoError(t, err)
	_, err = repo.Link(userID, createBook(t, db, "B"), entities.StatusCompleted)
	require.NoError(t, err)
	_, err = repo.Link(userID, createBook(t, db, "C"), entities.StatusWishlist)
	require.NoError(t, err)
	_, err = repo.Link(other, createBook(t, db, "D"), entities.StatusReading)
	require.NoError(t, err)

	stats, err := repo.StatsForUser(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Reading)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Wishlist)
	assert.Equal(t, stats.Total, stats.Reading+stats.Completed+stats.Wishlist)
}
