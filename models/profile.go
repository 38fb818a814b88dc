package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DuelStats tracks an attendee's lifetime 1v1 record. Counters only ever go
// up. Profiles created before duels shipped have a NULL stats block; use
// AttendeeProfile.EnsureDuelStats before reading or writing it.
type DuelStats struct {
	DuelsPlayed       int `json:"duels_played"`
	DuelsWon          int `json:"duels_won"`
	UniqueDuelsPlayed int `json:"unique_duels_played"`
}

func (s DuelStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *DuelStats) Scan(value interface{}) error {
	if value == nil {
		*s = DuelStats{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type %T for DuelStats", value)
	}
}

// AttendeeProfile is the local snapshot of a hackathon attendee. Identity
// fields are owned by the registration service and kept fresh by the profile
// sync worker; Points and DuelStats are owned here.
type AttendeeProfile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	DisplayName       string  `gorm:"index" json:"display_name"`
	Email             string  `json:"email,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	Team              *string `json:"team,omitempty"`

	// Points is the attendee's spendable score, incremented atomically by
	// the points service and spent in the shop.
	Points int64 `json:"points" gorm:"default:0"`

	// DuelStats is NULL for profiles that predate the duel feature.
	DuelStats *DuelStats `json:"duel_stats,omitempty" gorm:"type:jsonb"`

	LastSeen *time.Time `json:"last_seen,omitempty"`
	IsBanned bool       `json:"is_banned" gorm:"default:false"`

	Timestamps
}

// EnsureDuelStats lazily initializes the stats block for pre-duel profiles.
func (p *AttendeeProfile) EnsureDuelStats() *DuelStats {
	if p.DuelStats == nil {
		p.DuelStats = &DuelStats{}
	}
	return p.DuelStats
}

// RemoteAttendee mirrors the JSON shape of the registration service's
// attendee feed (read-only, consumed by the sync worker).
type RemoteAttendee struct {
	ExternalID        string    `json:"external_id"`
	FirstName         *string   `json:"first_name,omitempty"`
	LastName          *string   `json:"last_name,omitempty"`
	Email             string    `json:"email"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	Team              *string   `json:"team,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
