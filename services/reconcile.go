package services

import (
	"encoding/json"
	"errors"

	"hackathon-event-system/models"
)

// DuelUpdate is a partial mutation of a duel's scalar state, proposed by one
// side and held until the other side proposes the exact same thing. nil
// fields are absent from the proposal entirely — {hostScore: 1} and
// {hostScore: 1, hasFinished: false} are different proposals and will never
// match each other.
type DuelUpdate struct {
	HostScore            *int  `json:"hostScore,omitempty"`
	GuestScore           *int  `json:"guestScore,omitempty"`
	HostHasDisconnected  *bool `json:"hostHasDisconnected,omitempty"`
	GuestHasDisconnected *bool `json:"guestHasDisconnected,omitempty"`
	HasFinished          *bool `json:"hasFinished,omitempty"`
}

var errEmptyUpdate = errors.New("update must set at least one field")

// IsEmpty reports whether no field is set.
func (u *DuelUpdate) IsEmpty() bool {
	return u.HostScore == nil && u.GuestScore == nil &&
		u.HostHasDisconnected == nil && u.GuestHasDisconnected == nil &&
		u.HasFinished == nil
}

// Validate rejects proposals that could never be committed sensibly.
func (u *DuelUpdate) Validate() error {
	if u.IsEmpty() {
		return errEmptyUpdate
	}
	if u.HostScore != nil && *u.HostScore < 0 {
		return errors.New("hostScore must not be negative")
	}
	if u.GuestScore != nil && *u.GuestScore < 0 {
		return errors.New("guestScore must not be negative")
	}
	return nil
}

// Canonical renders the proposal as deterministic JSON: only the set fields,
// keys sorted, no whitespace. Byte-identity of this string is what the
// protocol compares — it is the unit of agreement between host and guest.
func (u *DuelUpdate) Canonical() (string, error) {
	fields := map[string]interface{}{}
	if u.HostScore != nil {
		fields["hostScore"] = *u.HostScore
	}
	if u.GuestScore != nil {
		fields["guestScore"] = *u.GuestScore
	}
	if u.HostHasDisconnected != nil {
		fields["hostHasDisconnected"] = *u.HostHasDisconnected
	}
	if u.GuestHasDisconnected != nil {
		fields["guestHasDisconnected"] = *u.GuestHasDisconnected
	}
	if u.HasFinished != nil {
		fields["hasFinished"] = *u.HasFinished
	}
	if len(fields) == 0 {
		return "", errEmptyUpdate
	}
	// encoding/json sorts map keys, which gives us the stable ordering.
	b, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Apply copies the set fields onto the duel. Only called at commit time,
// after both sides have proposed the identical update.
func (u *DuelUpdate) Apply(d *models.Duel) {
	if u.HostScore != nil {
		d.HostScore = *u.HostScore
	}
	if u.GuestScore != nil {
		d.GuestScore = *u.GuestScore
	}
	if u.HostHasDisconnected != nil {
		d.HostHasDisconnected = *u.HostHasDisconnected
	}
	if u.GuestHasDisconnected != nil {
		d.GuestHasDisconnected = *u.GuestHasDisconnected
	}
	if u.HasFinished != nil {
		d.HasFinished = *u.HasFinished
	}
}

// Reconcile runs one side's proposal against the duel's pending queues,
// in memory. If the opponent already queued the identical canonical entry it
// is removed from the opponent's queue only and the fields are applied
// (committed == true); otherwise the entry is appended to the submitter's
// own queue. The caller is responsible for persisting the duel afterwards
// with a compare-and-swap save.
func Reconcile(d *models.Duel, role models.DuelRole, update *DuelUpdate) (committed bool, err error) {
	canonical, err := update.Canonical()
	if err != nil {
		return false, err
	}
	if d.PendingUpdates.Remove(role.Opponent(), canonical) {
		update.Apply(d)
		return true, nil
	}
	d.PendingUpdates.Enqueue(role, canonical)
	return false, nil
}
