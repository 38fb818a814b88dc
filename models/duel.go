package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// DuelRole identifies which side of a duel a user occupies. Host and guest
// are distinct roles — a duel between A and B is not the same record as a
// duel between B and A.
type DuelRole string

const (
	RoleHost  DuelRole = "host"
	RoleGuest DuelRole = "guest"
)

// Opponent returns the other side of the duel.
func (r DuelRole) Opponent() DuelRole {
	if r == RoleHost {
		return RoleGuest
	}
	return RoleHost
}

// PendingUpdates holds the two per-side queues of canonical-JSON proposals
// awaiting the counterpart's matching proposal. A side only ever appends to
// its own queue; entries are only removed from the opponent's queue when an
// exact match commits. Stored as a single JSONB column on the duel row.
type PendingUpdates struct {
	Host  []string `json:"host"`
	Guest []string `json:"guest"`
}

func (p PendingUpdates) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PendingUpdates) Scan(value interface{}) error {
	if value == nil {
		*p = PendingUpdates{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type %T for PendingUpdates", value)
	}
}

func (p *PendingUpdates) queue(role DuelRole) *[]string {
	if role == RoleHost {
		return &p.Host
	}
	return &p.Guest
}

// Enqueue appends a canonical proposal to the given side's queue.
func (p *PendingUpdates) Enqueue(role DuelRole, entry string) {
	q := p.queue(role)
	*q = append(*q, entry)
}

// Remove deletes the first occurrence of entry from the given side's queue
// and reports whether it was present.
func (p *PendingUpdates) Remove(role DuelRole, entry string) bool {
	q := p.queue(role)
	for i, e := range *q {
		if e == entry {
			*q = append((*q)[:i], (*q)[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether entry is queued on the given side.
func (p *PendingUpdates) Contains(role DuelRole, entry string) bool {
	for _, e := range *p.queue(role) {
		if e == entry {
			return true
		}
	}
	return false
}

// Duel is a single 1v1 match record between two attendees. Host and guest
// are fixed at creation; scores and disconnect flags only change through the
// reconciliation protocol, which requires both sides to propose an identical
// mutation before it is applied.
type Duel struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	HostID  string `gorm:"index;not null" json:"host_id"`
	GuestID string `gorm:"index;not null" json:"guest_id"`

	HostScore  int `json:"host_score" gorm:"default:0"`
	GuestScore int `json:"guest_score" gorm:"default:0"`

	HostHasDisconnected  bool `json:"host_has_disconnected" gorm:"default:false"`
	GuestHasDisconnected bool `json:"guest_has_disconnected" gorm:"default:false"`

	// HasFinished is terminal — once true, no further protocol mutation is
	// ever applied to this record.
	HasFinished bool `json:"has_finished" gorm:"default:false"`

	// IsScoringDuel is decided at creation and controls whether the outcome
	// counts toward lifetime stats and point rewards. A disconnect finish
	// retroactively forces it to false.
	IsScoringDuel bool `json:"is_scoring_duel" gorm:"default:false"`

	PendingUpdates PendingUpdates `json:"pending_updates" gorm:"type:jsonb"`

	// Version backs the compare-and-swap save; every successful write of the
	// mutable fields bumps it by one.
	Version int `json:"-" gorm:"default:0"`

	Timestamps
}

// RoleOf resolves a user id to a side of this duel.
func (d *Duel) RoleOf(userID string) (DuelRole, error) {
	switch userID {
	case d.HostID:
		return RoleHost, nil
	case d.GuestID:
		return RoleGuest, nil
	}
	return "", errors.New("user is not a participant of this duel")
}
