package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-order-go/models"
	"resto-order-go/storage"
)

type CreateMenuItemRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description" binding:"required"`
	Price       *int64              `json:"price" binding:"required,gte=0"`
	Category    models.MenuCategory `json:"category" binding:"required,oneof=makanan-utama minuman snack dessert"`
	Image       *string             `json:"image"`
	Available   *bool               `json:"available"`
}

// UpdateMenuItemRequest uses pointers so absent fields stay untouched. An
// explicit "image": null removes the image.
type UpdateMenuItemRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Price       *int64               `json:"price" binding:"omitempty,gte=0"`
	Category    *models.MenuCategory `json:"category" binding:"omitempty,oneof=makanan-utama minuman snack dessert"`
	Image       nullableString       `json:"image"`
	Available   *bool                `json:"available"`
}

// nullableString tells an absent JSON field apart from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	n.Value = &value
	return nil
}

func (h *Handler) ListMenuItemsHandler(c *gin.Context) {
	var (
		menuItems []models.MenuItem
		err       error
	)

	if category := models.MenuCategory(c.Query("category")); category != "" {
		if !category.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		menuItems, err = h.store.GetMenuItemsByCategory(c.Request.Context(), category)
	} else {
		menuItems, err = h.store.GetAllMenuItems(c.Request.Context())
	}
	if err != nil {
		internalError(c, "Failed to fetch menu items", err)
		return
	}

	if menuItems == nil {
		menuItems = []models.MenuItem{}
	}

	c.JSON(http.StatusOK, menuItems)
}

func (h *Handler) GetMenuItemHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c, "Menu item not found")
		return
	}

	menuItem, err := h.store.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "Menu item not found")
			return
		}
		internalError(c, "Failed to fetch menu item", err)
		return
	}

	c.JSON(http.StatusOK, menuItem)
}

func (h *Handler) CreateMenuItemHandler(c *gin.Context) {
	var request CreateMenuItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid menu item data", err)
		return
	}

	available := true
	if request.Available != nil {
		available = *request.Available
	}

	menuItem, err := h.store.CreateMenuItem(c.Request.Context(), models.NewMenuItem{
		Name:        request.Name,
		Description: request.Description,
		Price:       *request.Price,
		Category:    request.Category,
		Image:       request.Image,
		Available:   available,
	})
	if err != nil {
		internalError(c, "Failed to create menu item", err)
		return
	}

	c.JSON(http.StatusCreated, menuItem)
}

func (h *Handler) UpdateMenuItemHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c, "Menu item not found")
		return
	}

	var request UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid menu item data", err)
		return
	}

	menuItem, err := h.store.UpdateMenuItem(c.Request.Context(), id, models.MenuItemUpdate{
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		Category:    request.Category,
		Image:       request.Image.Value,
		ClearImage:  request.Image.Set && request.Image.Value == nil,
		Available:   request.Available,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(c, "Menu item not found")
			return
		}
		internalError(c, "Failed to update menu item", err)
		return
	}

	c.JSON(http.StatusOK, menuItem)
}

func (h *Handler) DeleteMenuItemHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c, "Menu item not found")
		return
	}

	deleted, err := h.store.DeleteMenuItem(c.Request.Context(), id)
	if err != nil {
		internalError(c, "Failed to delete menu item", err)
		return
	}
	if !deleted {
		notFound(c, "Menu item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
