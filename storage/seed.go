package storage

import (
	"context"
	"errors"
	"fmt"

	"resto-order-go/models"
)

func strPtr(s string) *string { return &s }

// SampleMenu is inserted at startup so a fresh process has something to sell.
var SampleMenu = []models.NewMenuItem{
	{
		Name:        "Nasi Gudeg Special",
		Description: "Gudeg ayam dengan nasi, sambal, dan kerupuk",
		Price:       25000,
		Category:    models.MenuCategoryMainCourse,
		Image:       strPtr("gudeg.jpg"),
		Available:   true,
	},
	{
		Name:        "Nasi Goreng Kampung",
		Description: "Nasi goreng dengan telur, sayuran, dan kerupuk",
		Price:       22000,
		Category:    models.MenuCategoryMainCourse,
		Image:       strPtr("nasgor.jpg"),
		Available:   true,
	},
	{
		Name:        "Ayam Bakar Bumbu Rujak",
		Description: "Ayam bakar dengan bumbu rujak, nasi, dan lalapan",
		Price:       28000,
		Category:    models.MenuCategoryMainCourse,
		Image:       strPtr("ayam-bakar.jpg"),
		Available:   true,
	},
	{
		Name:        "Es Jeruk Peras",
		Description: "Jeruk peras segar dengan es batu",
		Price:       8000,
		Category:    models.MenuCategoryDrink,
		Image:       strPtr("es-jeruk.jpg"),
		Available:   true,
	},
	{
		Name:        "Es Teh Manis",
		Description: "Teh manis dingin yang menyegarkan",
		Price:       5000,
		Category:    models.MenuCategoryDrink,
		Image:       strPtr("es-teh.jpg"),
		Available:   true,
	},
	{
		Name:        "Keripik Singkong",
		Description: "Keripik singkong renyah dengan bumbu pedas",
		Price:       12000,
		Category:    models.MenuCategorySnack,
		Image:       strPtr("keripik.jpg"),
		Available:   true,
	},
	{
		Name:        "Es Krim Kelapa",
		Description: "Es krim rasa kelapa dengan topping kelapa parut",
		Price:       15000,
		Category:    models.MenuCategoryDessert,
		Image:       strPtr("es-krim.jpg"),
		Available:   true,
	},
}

// SeedMenu inserts items when the store holds no menu items yet. It returns
// the number of items inserted.
func SeedMenu(ctx context.Context, s Storage, items []models.NewMenuItem) (int, error) {
	existing, err := s.GetAllMenuItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list menu items: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, item := range items {
		if _, err := s.CreateMenuItem(ctx, item); err != nil {
			return i, fmt.Errorf("seed menu item %q: %w", item.Name, err)
		}
	}
	return len(items), nil
}

// SeedUser creates the user unless the username is already taken.
// password is stored as a bcrypt hash.
func SeedUser(ctx context.Context, s Storage, username, password string) (*models.User, error) {
	existing, err := s.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}

	user := models.User{Username: username}
	if err := user.HashPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.CreateUser(ctx, models.NewUser{Username: user.Username, Password: user.Password})
}
