// Package database provides the data access layer for the bookstore.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres) and migrations
//	├── catalog/         # Authors, categories and books, with cascade rules
//	├── carts/           # Shopping carts and their book sets
//	├── users/           # Users and auth tokens
//	└── audit/           # Account activity events
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookstore.db")
//
//	catalogRepo := catalog.NewRepository(db.DB)
//	cartsRepo := carts.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
// # Cascades
//
// Deleting an author or a category deletes its books. Deleting a book removes
// it from every cart. The catalog repository performs these deletes inside a
// single transaction; the schema also declares ON DELETE CASCADE so rows
// removed outside the repository do not leave dangling references.
package database
