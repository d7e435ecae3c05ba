package models

type MenuCategory string

const (
	MenuCategoryMainCourse MenuCategory = "makanan-utama"
	MenuCategoryDrink      MenuCategory = "minuman"
	MenuCategorySnack      MenuCategory = "snack"
	MenuCategoryDessert    MenuCategory = "dessert"
)

// Valid reports whether c is one of the fixed menu categories.
func (c MenuCategory) Valid() bool {
	switch c {
	case MenuCategoryMainCourse, MenuCategoryDrink, MenuCategorySnack, MenuCategoryDessert:
		return true
	}
	return false
}

type MenuItem struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"not null"`
	Description string       `json:"description" gorm:"not null"`
	Price       int64        `json:"price" gorm:"not null"` // rupiah
	Category    MenuCategory `json:"category" gorm:"not null;index"`
	Image       *string      `json:"image"`
	Available   bool         `json:"available"`
}

// NewMenuItem is the payload for creating a menu item. The store assigns the id.
type NewMenuItem struct {
	Name        string
	Description string
	Price       int64
	Category    MenuCategory
	Image       *string
	Available   bool
}

// MenuItemUpdate carries a partial update; nil fields are left untouched.
// ClearImage removes the image and takes precedence over Image.
type MenuItemUpdate struct {
	Name        *string
	Description *string
	Price       *int64
	Category    *MenuCategory
	Image       *string
	ClearImage  bool
	Available   *bool
}

// Apply writes the non-nil fields of u onto item.
func (u MenuItemUpdate) Apply(item *MenuItem) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.Category != nil {
		item.Category = *u.Category
	}
	switch {
	case u.ClearImage:
		item.Image = nil
	case u.Image != nil:
		image := *u.Image
		item.Image = &image
	}
	if u.Available != nil {
		item.Available = *u.Available
	}
}

// Empty reports whether the update changes nothing.
func (u MenuItemUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.Image == nil && !u.ClearImage && u.Available == nil
}
