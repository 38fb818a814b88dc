package services

import (
	"net/http"
	"testing"

	"hackathon-event-system/models"

	"github.com/gofiber/fiber/v2"
	. "github.com/smartystreets/goconvey/convey"
)

// agree submits the same payload from both sides and returns the second
// response, which carries the commit (or the scoring failure).
func agree(t *testing.T, app *fiber.App, duelID, hostID, guestID string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	path := "/duels/" + duelID + "/updates"

	resp, body := doJSON(t, app, "POST", path, hostID, payload)
	if resp.StatusCode != http.StatusOK || body["status"] != "pending" {
		t.Fatalf("expected first proposal to be pending, got %d: %v", resp.StatusCode, body)
	}
	return doJSON(t, app, "POST", path, guestID, payload)
}

func TestScoringWin(t *testing.T) {
	Convey("Given a scoring duel between alice and bob with fresh profiles", t, func() {
		db := newTestDB(t)
		duels := NewDuelService(db, NewProfileService(db))
		app := newDuelApp(duels)
		seedProfile(t, db, "alice", 0, nil)
		seedProfile(t, db, "bob", 0, nil)
		id, _ := createDuel(t, app, "alice", "bob")

		Convey("Driving the host score to the winning threshold", func() {
			for score := 1; score <= WinningScore; score++ {
				resp, body := agree(t, app, id, "alice", "bob", map[string]int{"hostScore": score})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "committed")
			}

			duel := loadDuel(t, db, id)
			So(duel.HostScore, ShouldEqual, WinningScore)
			So(duel.HasFinished, ShouldBeTrue)
			So(duel.IsScoringDuel, ShouldBeTrue)

			Convey("The winner's stats and points update", func() {
				alice := loadProfile(t, db, "alice")
				So(alice.DuelStats, ShouldNotBeNil)
				So(alice.DuelStats.DuelsPlayed, ShouldEqual, 1)
				So(alice.DuelStats.DuelsWon, ShouldEqual, 1)
				So(alice.DuelStats.UniqueDuelsPlayed, ShouldEqual, 1)
				So(alice.Points, ShouldEqual, int64(WinningPoints))
			})

			Convey("The loser gets participation, not a win", func() {
				bob := loadProfile(t, db, "bob")
				So(bob.DuelStats.DuelsPlayed, ShouldEqual, 1)
				So(bob.DuelStats.DuelsWon, ShouldEqual, 0)
				So(bob.DuelStats.UniqueDuelsPlayed, ShouldEqual, 1)
				So(bob.Points, ShouldEqual, int64(ParticipationPoints))
			})

			Convey("Further proposals are rejected and award nothing again", func() {
				resp, _ := doJSON(t, app, "POST", "/duels/"+id+"/updates", "alice",
					map[string]int{"hostScore": WinningScore})
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)

				alice := loadProfile(t, db, "alice")
				So(alice.Points, ShouldEqual, int64(WinningPoints))
				So(alice.DuelStats.DuelsPlayed, ShouldEqual, 1)
			})
		})

		Convey("Both sides at the threshold is not a win", func() {
			resp, body := agree(t, app, id, "alice", "bob",
				map[string]int{"hostScore": WinningScore, "guestScore": WinningScore})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "committed")

			duel := loadDuel(t, db, id)
			So(duel.HasFinished, ShouldBeFalse)
			So(loadProfile(t, db, "alice").Points, ShouldEqual, int64(0))
		})
	})
}

func TestNonScoringWin(t *testing.T) {
	Convey("Given a non-scoring duel (a scoring one is already live for the pair)", t, func() {
		db := newTestDB(t)
		duels := NewDuelService(db, NewProfileService(db))
		app := newDuelApp(duels)
		seedProfile(t, db, "alice", 0, nil)
		seedProfile(t, db, "bob", 0, nil)
		createDuel(t, app, "alice", "bob")
		id, body := createDuel(t, app, "alice", "bob")
		So(body["is_scoring_duel"], ShouldBeFalse)

		Convey("A win updates played/won but not unique counts, and pays nothing", func() {
			resp, body := agree(t, app, id, "alice", "bob", map[string]int{"guestScore": WinningScore})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "committed")

			duel := loadDuel(t, db, id)
			So(duel.HasFinished, ShouldBeTrue)

			bob := loadProfile(t, db, "bob")
			So(bob.DuelStats.DuelsPlayed, ShouldEqual, 1)
			So(bob.DuelStats.DuelsWon, ShouldEqual, 1)
			So(bob.DuelStats.UniqueDuelsPlayed, ShouldEqual, 0)
			So(bob.Points, ShouldEqual, int64(0))

			alice := loadProfile(t, db, "alice")
			So(alice.DuelStats.DuelsPlayed, ShouldEqual, 1)
			So(alice.DuelStats.UniqueDuelsPlayed, ShouldEqual, 0)
			So(alice.Points, ShouldEqual, int64(0))
		})
	})
}

func TestDisconnectPriority(t *testing.T) {
	Convey("Given a scoring duel", t, func() {
		db := newTestDB(t)
		duels := NewDuelService(db, NewProfileService(db))
		app := newDuelApp(duels)
		seedProfile(t, db, "alice", 0, nil)
		seedProfile(t, db, "bob", 0, nil)
		id, _ := createDuel(t, app, "alice", "bob")

		Convey("A committed disconnect finishes the match with no rewards", func() {
			resp, body := agree(t, app, id, "alice", "bob",
				map[string]interface{}{"guestHasDisconnected": true})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "committed")

			duel := loadDuel(t, db, id)
			So(duel.HasFinished, ShouldBeTrue)
			So(duel.IsScoringDuel, ShouldBeFalse)
			So(loadProfile(t, db, "alice").Points, ShouldEqual, int64(0))
		})

		Convey("Disconnect wins over a winning score in the same update", func() {
			resp, body := agree(t, app, id, "alice", "bob",
				map[string]interface{}{"hostScore": WinningScore, "hostHasDisconnected": true})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "committed")

			duel := loadDuel(t, db, id)
			So(duel.HasFinished, ShouldBeTrue)
			So(duel.IsScoringDuel, ShouldBeFalse)
			So(duel.HostScore, ShouldEqual, WinningScore)

			// No stats, no points — a disconnect finish never rewards.
			alice := loadProfile(t, db, "alice")
			So(alice.DuelStats, ShouldBeNil)
			So(alice.Points, ShouldEqual, int64(0))
			So(loadProfile(t, db, "bob").Points, ShouldEqual, int64(0))
		})
	})
}

func TestLifetimeCapBoundary(t *testing.T) {
	Convey("Given alice exactly at the lifetime cap and bob far below it", t, func() {
		db := newTestDB(t)
		duels := NewDuelService(db, NewProfileService(db))
		app := newDuelApp(duels)
		seedProfile(t, db, "alice", 100, &models.DuelStats{
			DuelsPlayed: 30, DuelsWon: 20, UniqueDuelsPlayed: MaxScoringDuels,
		})
		seedProfile(t, db, "bob", 0, nil)
		id, _ := createDuel(t, app, "alice", "bob")

		Convey("Alice wins but the pre-increment cap check pays her nothing", func() {
			resp, body := agree(t, app, id, "alice", "bob", map[string]int{"hostScore": WinningScore})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "committed")

			alice := loadProfile(t, db, "alice")
			So(alice.Points, ShouldEqual, int64(100)) // unchanged
			So(alice.DuelStats.DuelsWon, ShouldEqual, 21)
			So(alice.DuelStats.UniqueDuelsPlayed, ShouldEqual, MaxScoringDuels+1)

			// Bob is under his own cap, so his participation still pays.
			bob := loadProfile(t, db, "bob")
			So(bob.Points, ShouldEqual, int64(ParticipationPoints))
			So(bob.DuelStats.UniqueDuelsPlayed, ShouldEqual, 1)
		})
	})

	Convey("Given alice one below the cap", t, func() {
		db := newTestDB(t)
		duels := NewDuelService(db, NewProfileService(db))
		app := newDuelApp(duels)
		seedProfile(t, db, "alice", 100, &models.DuelStats{
			DuelsPlayed: 30, DuelsWon: 20, UniqueDuelsPlayed: MaxScoringDuels - 1,
		})
		seedProfile(t, db, "bob", 0, nil)
		id, _ := createDuel(t, app, "alice", "bob")

		Convey("Her last eligible scoring duel still pays out", func() {
			agree(t, app, id, "alice", "bob", map[string]int{"hostScore": WinningScore})

			alice := loadProfile(t, db, "alice")
			So(alice.Points, ShouldEqual, int64(100+WinningPoints))
			So(alice.DuelStats.UniqueDuelsPlayed, ShouldEqual, MaxScoringDuels)
		})
	})
}

func TestMissingProfileIsFatal(t *testing.T) {
	Convey("Given a duel whose players have no profiles", t, func() {
		db := newTestDB(t)
		duels := NewDuelService(db, NewProfileService(db))
		app := newDuelApp(duels)
		id, _ := createDuel(t, app, "alice", "bob")

		Convey("A winning commit surfaces a 500 and leaves the match in progress", func() {
			resp, body := agree(t, app, id, "alice", "bob", map[string]int{"hostScore": WinningScore})
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			So(body["error"], ShouldContainSubstring, "missing profile")

			// The committed mutation stands; only the scoring aborted.
			duel := loadDuel(t, db, id)
			So(duel.HostScore, ShouldEqual, WinningScore)
			So(duel.HasFinished, ShouldBeFalse)

			Convey("Scoring is retried on the next committed mutation", func() {
				seedProfile(t, db, "alice", 0, nil)
				seedProfile(t, db, "bob", 0, nil)

				resp, body := agree(t, app, id, "alice", "bob", map[string]int{"hostScore": WinningScore})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "committed")

				duel := loadDuel(t, db, id)
				So(duel.HasFinished, ShouldBeTrue)
				So(loadProfile(t, db, "alice").Points, ShouldEqual, int64(WinningPoints))
				So(loadProfile(t, db, "bob").Points, ShouldEqual, int64(ParticipationPoints))
			})
		})
	})
}
