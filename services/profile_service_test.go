package services

import (
	"testing"

	"hackathon-event-system/models"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEnsureProfileRecord(t *testing.T) {
	Convey("Given a profile service", t, func() {
		db := newTestDB(t)
		profiles := NewProfileService(db)

		Convey("The first call creates a minimal profile", func() {
			p, err := profiles.EnsureProfileRecord("alice", "Alice")
			So(err, ShouldBeNil)
			So(p.ExternalUserID, ShouldEqual, "alice")
			So(p.Points, ShouldEqual, int64(0))
			So(p.DuelStats, ShouldBeNil)

			Convey("And the second call returns the same record", func() {
				again, err := profiles.EnsureProfileRecord("alice", "Someone Else")
				So(err, ShouldBeNil)
				So(again.ID, ShouldEqual, p.ID)
				So(again.DisplayName, ShouldEqual, "Alice")
			})
		})
	})
}

func TestAwardPoints(t *testing.T) {
	Convey("Given an attendee with a point balance", t, func() {
		db := newTestDB(t)
		profiles := NewProfileService(db)
		seedProfile(t, db, "alice", 7, nil)

		Convey("Awards apply as atomic increments", func() {
			So(profiles.AwardPoints(db, "alice", 5), ShouldBeNil)
			So(profiles.AwardPoints(db, "alice", 1), ShouldBeNil)
			So(loadProfile(t, db, "alice").Points, ShouldEqual, int64(13))
		})

		Convey("An unknown attendee is a data-integrity error", func() {
			err := profiles.AwardPoints(db, "nobody", 5)
			So(err, ShouldEqual, ErrProfileNotFound)
		})
	})
}

func TestSaveDuelStatsLeavesPointsAlone(t *testing.T) {
	Convey("Writing the stats block never clobbers the point balance", t, func() {
		db := newTestDB(t)
		profiles := NewProfileService(db)
		seedProfile(t, db, "alice", 42, nil)

		stats := &models.DuelStats{DuelsPlayed: 3, DuelsWon: 2, UniqueDuelsPlayed: 3}
		So(profiles.saveDuelStats(db, "alice", stats), ShouldBeNil)

		p := loadProfile(t, db, "alice")
		So(p.Points, ShouldEqual, int64(42))
		So(p.DuelStats, ShouldNotBeNil)
		So(p.DuelStats.DuelsWon, ShouldEqual, 2)
	})
}
