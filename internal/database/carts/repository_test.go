package carts

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/entities"
)

type fixture struct {
	repo  *Repository
	db    *gorm.DB
	user  *entities.User
	books []entities.Book
}

func setupTestDB(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "carts.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	user := &entities.User{Username: "reader", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(user).Error)
	author := &entities.Author{Name: "Italo Calvino"}
	require.NoError(t, db.DB.Create(author).Error)
	category := &entities.Category{Name: "Fiction"}
	require.NoError(t, db.DB.Create(category).Error)

	var books []entities.Book
	for i, title := range []string{"Invisible Cities", "If on a winter's night a traveler", "Cosmicomics"} {
		book := entities.Book{
			Title:         title,
			AuthorID:      author.ID,
			CategoryID:    category.ID,
			PublishedDate: entities.NewDate(time.Date(1972+i, 1, 1, 0, 0, 0, 0, time.UTC)),
			ISBN:          []string{"1000001", "1000002", "1000003"}[i],
		}
		require.NoError(t, db.DB.Omit("Author", "Category").Create(&book).Error)
		books = append(books, book)
	}

	return &fixture{repo: NewRepository(db.DB), db: db.DB, user: user, books: books}
}

func TestRepository_CreateCart(t *testing.T) {
	f := setupTestDB(t)

	t.Run("with books", func(t *testing.T) {
		cart, err := f.repo.CreateCart(f.user.ID, []uint{f.books[1].ID, f.books[0].ID, f.books[1].ID})
		require.NoError(t, err)
		assert.Equal(t, f.user.ID, cart.UserID)
		assert.Equal(t, []uint{f.books[0].ID, f.books[1].ID}, cart.BookIDs())
	})

	t.Run("empty", func(t *testing.T) {
		cart, err := f.repo.CreateCart(f.user.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, cart.BookIDs())
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := f.repo.CreateCart(f.user.ID, []uint{9999})
		assert.ErrorIs(t, err, ErrUnknownBook)
	})
}

func TestRepository_UpdateCart(t *testing.T) {
	f := setupTestDB(t)
	cart, err := f.repo.CreateCart(f.user.ID, []uint{f.books[0].ID})
	require.NoError(t, err)

	updated, err := f.repo.UpdateCart(cart.ID, f.user.ID, []uint{f.books[2].ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.books[2].ID}, updated.BookIDs())

	_, err = f.repo.UpdateCart(9999, f.user.ID, nil)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRepository_ListCartsForUser(t *testing.T) {
	f := setupTestDB(t)
	other := &entities.User{Username: "other", PasswordHash: "x"}
	require.NoError(t, f.db.Create(other).Error)

	_, err := f.repo.CreateCart(f.user.ID, []uint{f.books[0].ID})
	require.NoError(t, err)
	_, err = f.repo.CreateCart(f.user.ID, []uint{f.books[1].ID})
	require.NoError(t, err)
	_, err = f.repo.CreateCart(other.ID, nil)
	require.NoError(t, err)

	mine, err := f.repo.ListCartsForUser(f.user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.repo.ListCarts()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_DeleteCart(t *testing.T) {
	f := setupTestDB(t)
	cart, err := f.repo.CreateCart(f.user.ID, []uint{f.books[0].ID, f.books[1].ID})
	require.NoError(t, err)

	require.NoError(t, f.repo.DeleteCart(cart.ID))

	_, err = f.repo.GetCart(cart.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	var books int64
	require.NoError(t, f.db.Model(&entities.Book{}).Count(&books).Error)
	assert.Equal(t, int64(3), books, "books survive cart deletion")

	assert.ErrorIs(t, f.repo.DeleteCart(cart.ID), ErrCartNotFound)
}
