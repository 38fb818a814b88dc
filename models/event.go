package models

import "time"

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusPublished EventStatus = "published"
	EventStatusArchived  EventStatus = "archived"
)

// Event is a schedule entry on the hackathon agenda (workshop, ceremony,
// meal, side quest). Straight CRUD — published via the event scheduler.
type Event struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string      `gorm:"not null" json:"name"`
	Slug        string      `gorm:"uniqueIndex;not null" json:"slug"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	CoverURL    string      `json:"cover_url,omitempty"`
	StartsAt    *time.Time  `json:"starts_at,omitempty"`
	EndsAt      *time.Time  `json:"ends_at,omitempty"`
	Status      EventStatus `json:"status" gorm:"type:varchar(16);default:'draft'"`

	// PublishAt drives the scheduler: status "scheduled" rows flip to
	// "published" once this time passes.
	PublishAt *time.Time `json:"publish_at,omitempty"`

	Timestamps
}
