package services

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"hackathon-event-system/models"
	"hackathon-event-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// CreateEvent creates a new **draft** agenda entry with optional cover photo.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	event := &models.Event{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		Status:      models.EventStatusDraft,
	}

	if startsAt := c.FormValue("starts_at"); startsAt != "" {
		t, err := time.Parse(time.RFC3339, startsAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be RFC3339"})
		}
		event.StartsAt = &t
	}
	if endsAt := c.FormValue("ends_at"); endsAt != "" {
		t, err := time.Parse(time.RFC3339, endsAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ends_at must be RFC3339"})
		}
		event.EndsAt = &t
	}

	// Cover photo → R2 (small, public asset)
	if coverFile, err := c.FormFile("cover"); err == nil && coverFile.Size > 0 {
		coverExt := filepath.Ext(coverFile.Filename)
		if coverExt == "" {
			coverExt = ".png"
		}
		coverKey := "event-covers/" + uuid.NewString() + coverExt
		coverURL, err := utils.UploadFileToR2(coverFile, coverKey)
		if err != nil {
			log.Printf("R2 upload failed for event cover: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload cover photo"})
		}
		event.CoverURL = coverURL
	}

	if err := s.DB.Create(event).Error; err != nil {
		log.Printf("DB Error creating event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create event"})
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetPublishedEvents lists the public agenda.
func (s *EventService) GetPublishedEvents(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.
		Where("status = ?", models.EventStatusPublished).
		Order("starts_at ASC").
		Find(&events).Error; err != nil {
		log.Printf("DB Error fetching published events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}

	return c.JSON(events)
}

// GetAllEvents lists every event regardless of status (Admin only).
func (s *EventService) GetAllEvents(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.Order("created_at DESC").Find(&events).Error; err != nil {
		log.Printf("DB Error fetching events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}

	return c.JSON(events)
}

// GetEventByID fetches a single event.
func (s *EventService) GetEventByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(event)
}

// UpdateEvent applies a partial update (Admin only).
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Name != nil {
		event.Name = *req.Name
		event.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartsAt != nil {
		event.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}

	if err := s.DB.Save(&event).Error; err != nil {
		log.Printf("DB Error updating event %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update event"})
	}

	return c.JSON(event)
}

// PublishNow flips an event straight to published (Admin only).
func (s *EventService) PublishNow(c *fiber.Ctx) error {
	return s.setPublishState(c, models.EventStatusPublished, nil)
}

// SchedulePublish queues an event for automatic publication (Admin only).
func (s *EventService) SchedulePublish(c *fiber.Ctx) error {
	var req struct {
		PublishAt time.Time `json:"publish_at" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || req.PublishAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at is required"})
	}
	return s.setPublishState(c, models.EventStatusScheduled, &req.PublishAt)
}

func (s *EventService) setPublishState(c *fiber.Ctx, status models.EventStatus, publishAt *time.Time) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	event.Status = status
	event.PublishAt = publishAt
	if err := s.DB.Save(&event).Error; err != nil {
		log.Printf("DB Error publishing event %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update event status"})
	}

	return c.JSON(event)
}

// DeleteEvent removes an agenda entry (Admin only).
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event ID"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&event).Error; err != nil {
		log.Printf("DB Error deleting event %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete event"})
	}

	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}
