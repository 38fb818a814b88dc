package services

import (
	"errors"
	"log"

	"hackathon-event-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MaxDuelsPerPair bounds how many duel records may exist between the
	// same two attendees, in either role ordering.
	MaxDuelsPerPair = 5

	// WinningScore is the score a side must reach to win a duel.
	WinningScore = 3

	// MaxScoringDuels caps how many scoring duels in an attendee's lifetime
	// are eligible for point rewards.
	MaxScoringDuels = 25

	// WinningPoints and ParticipationPoints are paid out once per eligible
	// scoring duel.
	WinningPoints       = 5
	ParticipationPoints = 1
)

// maxCommitRetries bounds how often a propose re-runs after losing the
// version race to a concurrent propose on the same duel.
const maxCommitRetries = 3

// ErrDuelConflict is returned when the compare-and-swap save keeps losing to
// concurrent writers.
var ErrDuelConflict = errors.New("duel was modified concurrently")

type DuelService struct {
	DB       *gorm.DB
	Profiles *ProfileService
}

func NewDuelService(db *gorm.DB, profiles *ProfileService) *DuelService {
	return &DuelService{DB: db, Profiles: profiles}
}

// CountByUnorderedPair counts duel records between two attendees regardless
// of who hosted.
func (s *DuelService) CountByUnorderedPair(a, b string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Duel{}).
		Where("(host_id = ? AND guest_id = ?) OR (host_id = ? AND guest_id = ?)", a, b, b, a).
		Count(&n).Error
	return n, err
}

// pairHasLiveScoringDuel reports whether an unfinished scoring duel already
// exists between the unordered pair. Finished duels never block — only a
// concurrently live one.
func (s *DuelService) pairHasLiveScoringDuel(a, b string) (bool, error) {
	var n int64
	err := s.DB.Model(&models.Duel{}).
		Where("(host_id = ? AND guest_id = ?) OR (host_id = ? AND guest_id = ?)", a, b, b, a).
		Where("has_finished = ? AND is_scoring_duel = ?", false, true).
		Count(&n).Error
	return n > 0, err
}

// CreateDuel is the admission-control entry point. The authenticated user
// becomes the host; the request names the guest.
func (s *DuelService) CreateDuel(c *fiber.Ctx) error {
	hostID := c.Locals("user_id").(string)

	var req struct {
		GuestID string `json:"guest_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.GuestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "guest_id is required"})
	}
	if req.GuestID == hostID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot duel yourself"})
	}

	count, err := s.CountByUnorderedPair(hostID, req.GuestID)
	if err != nil {
		log.Printf("DB Error counting duels for pair (%s, %s): %v", hostID, req.GuestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if count >= MaxDuelsPerPair {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "too many duels between these players"})
	}

	// Only one live duel between a pair may count toward lifetime stats at a
	// time; a second concurrent match is created as non-scoring.
	blocked, err := s.pairHasLiveScoringDuel(hostID, req.GuestID)
	if err != nil {
		log.Printf("DB Error checking live scoring duels for pair (%s, %s): %v", hostID, req.GuestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	duel := &models.Duel{
		ID:            uuid.NewString(),
		HostID:        hostID,
		GuestID:       req.GuestID,
		IsScoringDuel: !blocked,
	}
	if err := s.DB.Create(duel).Error; err != nil {
		log.Printf("DB Error creating duel: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create duel"})
	}

	return c.Status(fiber.StatusCreated).JSON(duel)
}

// GetDuel fetches a single duel by id.
func (s *DuelService) GetDuel(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid duel ID"})
	}

	var duel models.Duel
	if err := s.DB.First(&duel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Duel not found"})
		}
		log.Printf("DB Error fetching duel %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(duel)
}

// GetMyDuels lists duels the authenticated user participates in, either role.
func (s *DuelService) GetMyDuels(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var duels []models.Duel
	if err := s.DB.
		Where("host_id = ? OR guest_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&duels).Error; err != nil {
		log.Printf("DB Error fetching duels for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch duels"})
	}

	return c.JSON(duels)
}

// ProposeDuelUpdate is the reconciliation endpoint. The submitter's proposal
// either queues as pending or, if the opponent already proposed the identical
// mutation, commits and triggers the lifecycle evaluation.
func (s *DuelService) ProposeDuelUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid duel ID"})
	}
	userID := c.Locals("user_id").(string)

	var update DuelUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := update.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		var duel models.Duel
		if err := s.DB.First(&duel, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Duel not found"})
			}
			log.Printf("DB Error fetching duel %s: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		if duel.HasFinished {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "duel has already finished"})
		}

		role, err := duel.RoleOf(userID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}

		committed, err := Reconcile(&duel, role, &update)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		if err := s.saveDuel(&duel); err != nil {
			if errors.Is(err, ErrDuelConflict) {
				continue // lost the race, reload and redo
			}
			log.Printf("DB Error saving duel %s: %v", duel.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save duel"})
		}

		if !committed {
			return c.JSON(fiber.Map{"status": "pending", "duel": duel})
		}

		if err := s.Evaluate(&duel); err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				// Data-integrity failure: the committed mutation stands, the
				// duel stays in progress, scoring is not retried here.
				log.Printf("[DUEL] ❌ Scoring for duel %s hit a missing profile: %v", duel.ID, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "duel references a missing profile"})
			}
			log.Printf("[DUEL] ❌ Evaluation failed for duel %s: %v", duel.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate duel"})
		}

		return c.JSON(fiber.Map{"status": "committed", "duel": duel})
	}

	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "duel is being updated concurrently, retry"})
}

// DeleteDuel removes a duel record (administrative only — abandoned or
// disputed matches).
func (s *DuelService) DeleteDuel(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid duel ID"})
	}

	var duel models.Duel
	if err := s.DB.First(&duel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Duel not found"})
		}
		log.Printf("DB Error fetching duel %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&duel).Error; err != nil {
		log.Printf("DB Error deleting duel %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete duel"})
	}

	return c.JSON(fiber.Map{"message": "Duel deleted successfully"})
}

// saveDuel persists the mutable duel fields with a compare-and-swap on the
// version column. Two concurrent proposals can otherwise interleave their
// load/mutate/save cycles and lose a queue entry or double-apply a commit.
func (s *DuelService) saveDuel(duel *models.Duel) error {
	return s.saveDuelTx(s.DB, duel)
}

func (s *DuelService) saveDuelTx(tx *gorm.DB, duel *models.Duel) error {
	res := tx.Model(&models.Duel{}).
		Where("id = ? AND version = ?", duel.ID, duel.Version).
		Updates(map[string]interface{}{
			"host_score":             duel.HostScore,
			"guest_score":            duel.GuestScore,
			"host_has_disconnected":  duel.HostHasDisconnected,
			"guest_has_disconnected": duel.GuestHasDisconnected,
			"has_finished":           duel.HasFinished,
			"is_scoring_duel":        duel.IsScoringDuel,
			"pending_updates":        duel.PendingUpdates,
			"version":                duel.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuelConflict
	}
	duel.Version++
	return nil
}
