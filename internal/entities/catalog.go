package entities

type Author struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

// Book references its author and category by id on the wire.
// ISBN is assigned by the server at creation and never changes afterwards.
type Book struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	Title         string   `gorm:"size:100;not null" json:"title"`
	AuthorID      uint     `gorm:"index;not null" json:"author"`
	PublishedDate Date     `gorm:"not null" json:"published_date"`
	ISBN          string   `gorm:"index;size:13;not null" json:"isbn"`
	CategoryID    uint     `gorm:"index;not null" json:"category"`
	Author        Author   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Category      Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

// ShoppingCart is a set of books owned by a user. A user may own several carts.
type ShoppingCart struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Books  []Book `gorm:"many2many:shopping_cart_books;constraint:OnDelete:CASCADE" json:"-"`
}

// BookIDs returns the ids of the books in the cart.
func (c ShoppingCart) BookIDs() []uint {
	ids := make([]uint, 0, len(c.Books))
	for _, b := range c.Books {
		ids = append(ids, b.ID)
	}
	return ids
}

func (Author) TableName() string {
	return "authors"
}

func (Category) TableName() string {
	return "categories"
}

func (Book) TableName() string {
	return "books"
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}
