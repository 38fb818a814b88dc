package services

import (
	"errors"
	"log"

	"hackathon-event-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrProfileNotFound signals a data-integrity failure: an operation that
// must touch an attendee profile found none for the given external id.
var ErrProfileNotFound = errors.New("attendee profile not found")

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

func (s *ProfileService) getByExternalID(tx *gorm.DB, externalUserID string) (*models.AttendeeProfile, error) {
	var profile models.AttendeeProfile
	if err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// AwardPoints atomically increments an attendee's point balance. The caller
// owns at-most-once semantics; this just applies the delta.
func (s *ProfileService) AwardPoints(tx *gorm.DB, externalUserID string, amount int64) error {
	res := tx.Model(&models.AttendeeProfile{}).
		Where("external_user_id = ?", externalUserID).
		UpdateColumn("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// saveDuelStats writes back only the duel_stats block, leaving points alone
// so concurrent AwardPoints increments are never clobbered.
func (s *ProfileService) saveDuelStats(tx *gorm.DB, externalUserID string, stats *models.DuelStats) error {
	res := tx.Model(&models.AttendeeProfile{}).
		Where("external_user_id = ?", externalUserID).
		Update("duel_stats", stats)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// EnsureProfileRecord creates a minimal profile row if none exists yet
// (idempotent) — walk-in registrations may hit the API before the sync
// worker has mirrored them.
func (s *ProfileService) EnsureProfileRecord(externalUserID, displayName string) (*models.AttendeeProfile, error) {
	profile, err := s.getByExternalID(s.DB, externalUserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	created := models.AttendeeProfile{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		DisplayName:    displayName,
	}
	if err := s.DB.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// --- Handlers ---

// GetMyProfile returns (lazily creating) the authenticated user's profile.
func (s *ProfileService) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	profile, err := s.EnsureProfileRecord(userID, c.Get("X-User-Name"))
	if err != nil {
		log.Printf("DB Error ensuring profile for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	return c.JSON(profile)
}

// GetMyDuelStats returns the authenticated user's lifetime duel record.
// Pre-duel profiles report all-zero stats without persisting anything.
func (s *ProfileService) GetMyDuelStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	profile, err := s.getByExternalID(s.DB, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		log.Printf("DB Error fetching profile for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(profile.EnsureDuelStats())
}

// GetAllProfiles lists every attendee profile (Admin only).
func (s *ProfileService) GetAllProfiles(c *fiber.Ctx) error {
	var profiles []models.AttendeeProfile
	if err := s.DB.Order("display_name ASC").Find(&profiles).Error; err != nil {
		log.Printf("DB Error fetching profiles: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profiles"})
	}

	return c.JSON(profiles)
}

// AdjustPoints applies a manual point delta to an attendee (Admin only —
// side quests, corrections).
func (s *ProfileService) AdjustPoints(c *fiber.Ctx) error {
	externalUserID := c.Params("external_id")

	var req struct {
		Amount int64  `json:"amount" validate:"required"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be non-zero"})
	}

	if err := s.AwardPoints(s.DB, externalUserID, req.Amount); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		log.Printf("DB Error adjusting points for %s: %v", externalUserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to adjust points"})
	}

	log.Printf("[POINTS] Adjusted %s by %d (%s)", externalUserID, req.Amount, req.Reason)
	return c.JSON(fiber.Map{"message": "Points adjusted successfully"})
}
