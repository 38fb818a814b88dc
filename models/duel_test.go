package models

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPendingUpdatesQueues(t *testing.T) {
	Convey("Given empty pending queues", t, func() {
		var p PendingUpdates

		Convey("Enqueue only touches the named side", func() {
			p.Enqueue(RoleHost, `{"hostScore":1}`)
			So(p.Host, ShouldResemble, []string{`{"hostScore":1}`})
			So(p.Guest, ShouldBeEmpty)
		})

		Convey("Remove takes the first occurrence only", func() {
			p.Enqueue(RoleGuest, "a")
			p.Enqueue(RoleGuest, "b")
			p.Enqueue(RoleGuest, "a")

			So(p.Remove(RoleGuest, "a"), ShouldBeTrue)
			So(p.Guest, ShouldResemble, []string{"b", "a"})
			So(p.Remove(RoleGuest, "missing"), ShouldBeFalse)
		})

		Convey("Contains checks a single side", func() {
			p.Enqueue(RoleHost, "x")
			So(p.Contains(RoleHost, "x"), ShouldBeTrue)
			So(p.Contains(RoleGuest, "x"), ShouldBeFalse)
		})
	})

	Convey("The JSON column round-trips through Value and Scan", t, func() {
		p := PendingUpdates{Host: []string{`{"hostScore":2}`}}
		raw, err := p.Value()
		So(err, ShouldBeNil)

		var restored PendingUpdates
		So(restored.Scan(raw), ShouldBeNil)
		So(restored, ShouldResemble, p)

		var fromNil PendingUpdates
		So(fromNil.Scan(nil), ShouldBeNil)
		So(fromNil.Host, ShouldBeEmpty)
	})
}

func TestDuelRole(t *testing.T) {
	Convey("Roles resolve from user ids and invert correctly", t, func() {
		d := Duel{ID: "d", HostID: "alice", GuestID: "bob"}

		role, err := d.RoleOf("alice")
		So(err, ShouldBeNil)
		So(role, ShouldEqual, RoleHost)
		So(role.Opponent(), ShouldEqual, RoleGuest)

		role, err = d.RoleOf("bob")
		So(err, ShouldBeNil)
		So(role, ShouldEqual, RoleGuest)
		So(role.Opponent(), ShouldEqual, RoleHost)

		_, err = d.RoleOf("mallory")
		So(err, ShouldNotBeNil)
	})
}

func TestEnsureDuelStats(t *testing.T) {
	Convey("Profiles created before duels existed lazily get a zero block", t, func() {
		p := AttendeeProfile{ID: "p", ExternalUserID: "alice"}
		So(p.DuelStats, ShouldBeNil)

		stats := p.EnsureDuelStats()
		So(stats, ShouldNotBeNil)
		So(stats.DuelsPlayed, ShouldEqual, 0)

		stats.DuelsPlayed++
		So(p.DuelStats.DuelsPlayed, ShouldEqual, 1)

		// A second call never resets an existing block.
		So(p.EnsureDuelStats(), ShouldEqual, p.DuelStats)
	})
}
