package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackathon-event-system/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// A pooled second connection would see a different :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.AttendeeProfile{},
		&models.Duel{},
		&models.Event{},
		&models.ShopItem{},
		&models.Purchase{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// userContext stands in for the gateway middleware: the test request's
// X-User-ID header becomes the handler's user context.
func userContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-User-ID"))
		return c.Next()
	}
}

func newDuelApp(duels *DuelService) *fiber.App {
	app := fiber.New()
	app.Use(userContext())
	app.Post("/duels", duels.CreateDuel)
	app.Get("/duels/:id", duels.GetDuel)
	app.Post("/duels/:id/updates", duels.ProposeDuelUpdate)
	app.Delete("/admin/duels/:id", duels.DeleteDuel)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	decoded := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func seedProfile(t *testing.T, db *gorm.DB, externalID string, points int64, stats *models.DuelStats) {
	t.Helper()
	profile := models.AttendeeProfile{
		ID:             externalID + "-profile",
		ExternalUserID: externalID,
		DisplayName:    externalID,
		Points:         points,
		DuelStats:      stats,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile %s: %v", externalID, err)
	}
}

func loadProfile(t *testing.T, db *gorm.DB, externalID string) models.AttendeeProfile {
	t.Helper()
	var profile models.AttendeeProfile
	if err := db.Where("external_user_id = ?", externalID).First(&profile).Error; err != nil {
		t.Fatalf("failed to load profile %s: %v", externalID, err)
	}
	return profile
}

func loadDuel(t *testing.T, db *gorm.DB, id string) models.Duel {
	t.Helper()
	var duel models.Duel
	if err := db.First(&duel, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load duel %s: %v", id, err)
	}
	return duel
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
