package services

import (
	"errors"
	"log"

	"hackathon-event-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopService struct {
	DB *gorm.DB
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{DB: db}
}

// CreateItem adds a product to the point shop (Admin only).
func (s *ShopService) CreateItem(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		Cost        int64  `json:"cost" validate:"required"`
		Stock       int    `json:"stock"`
		Published   bool   `json:"published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.Cost < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cost must not be negative"})
	}

	item := &models.ShopItem{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Cost:        req.Cost,
		Stock:       req.Stock,
		Published:   req.Published,
	}
	if err := s.DB.Create(item).Error; err != nil {
		log.Printf("DB Error creating shop item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create item"})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetItems lists published shop items.
func (s *ShopService) GetItems(c *fiber.Ctx) error {
	var items []models.ShopItem
	if err := s.DB.Where("published = ?", true).Order("cost ASC").Find(&items).Error; err != nil {
		log.Printf("DB Error fetching shop items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch items"})
	}

	return c.JSON(items)
}

// PurchaseItem redeems a shop item for the authenticated user: one
// transaction decrements stock, deducts points, and records the purchase.
func (s *ShopService) PurchaseItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	itemID := c.Params("id")
	if _, err := uuid.Parse(itemID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var purchase models.Purchase
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.ShopItem
		if err := tx.First(&item, "id = ? AND published = ?", itemID, true).Error; err != nil {
			return err
		}

		// Conditional decrements: zero rows affected means out of stock or
		// not enough points, without a read-check race.
		res := tx.Model(&models.ShopItem{}).
			Where("id = ? AND stock > 0", itemID).
			UpdateColumn("stock", gorm.Expr("stock - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errOutOfStock
		}

		res = tx.Model(&models.AttendeeProfile{}).
			Where("external_user_id = ? AND points >= ?", userID, item.Cost).
			UpdateColumn("points", gorm.Expr("points - ?", item.Cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientPoints
		}

		purchase = models.Purchase{
			ID:             uuid.NewString(),
			ItemID:         itemID,
			ExternalUserID: userID,
			Cost:           item.Cost,
		}
		return tx.Create(&purchase).Error
	})

	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(purchase)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	case errors.Is(err, errOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "item is out of stock"})
	case errors.Is(err, errInsufficientPoints):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "not enough points"})
	default:
		log.Printf("DB Error purchasing item %s for %s: %v", itemID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to purchase item"})
	}
}

var (
	errOutOfStock         = errors.New("out of stock")
	errInsufficientPoints = errors.New("insufficient points")
)

// GetMyPurchases lists the authenticated user's redemptions.
func (s *ShopService) GetMyPurchases(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var purchases []models.Purchase
	if err := s.DB.Where("external_user_id = ?", userID).Order("created_at DESC").Find(&purchases).Error; err != nil {
		log.Printf("DB Error fetching purchases for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch purchases"})
	}

	return c.JSON(purchases)
}

// DeleteItem removes a shop item (Admin only).
func (s *ShopService) DeleteItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item models.ShopItem
	if err := s.DB.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&item).Error; err != nil {
		log.Printf("DB Error deleting shop item %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete item"})
	}

	return c.JSON(fiber.Map{"message": "Item deleted successfully"})
}
