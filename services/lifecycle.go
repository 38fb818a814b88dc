package services

import (
	"log"

	"hackathon-event-system/models"

	"gorm.io/gorm"
)

// Evaluate runs the match lifecycle after every committed mutation. It is
// the only place a duel transitions to finished and the only caller of the
// point awards, so the "match once" property of the reconciliation protocol
// is what keeps rewards at most once per duel: a finished duel rejects all
// further proposals, so no further commit can re-enter here.
func (s *DuelService) Evaluate(duel *models.Duel) error {
	// Disconnect ends the match before win detection is even considered. No
	// rewards are paid for a match ended this way, even if a winning score
	// was committed in the same update.
	if duel.HostHasDisconnected || duel.GuestHasDisconnected {
		duel.HasFinished = true
		duel.IsScoringDuel = false
		if err := s.saveDuel(duel); err != nil {
			return err
		}
		log.Printf("[DUEL] 🔌 Duel %s finished by disconnect (host=%t guest=%t)",
			duel.ID, duel.HostHasDisconnected, duel.GuestHasDisconnected)
		return nil
	}

	// The peers may agree to end a match outright; nothing to score then.
	if duel.HasFinished {
		return nil
	}

	hostWon := duel.HostScore >= WinningScore
	guestWon := duel.GuestScore >= WinningScore
	if hostWon == guestWon {
		// Neither side at the threshold, or both — a win needs a unique
		// winner at this evaluation. The match stays in progress.
		return nil
	}

	winnerID, loserID := duel.HostID, duel.GuestID
	if guestWon {
		winnerID, loserID = duel.GuestID, duel.HostID
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		winner, err := s.Profiles.getByExternalID(tx, winnerID)
		if err != nil {
			return err
		}
		loser, err := s.Profiles.getByExternalID(tx, loserID)
		if err != nil {
			return err
		}

		winStats := winner.EnsureDuelStats()
		loseStats := loser.EnsureDuelStats()

		// Reward eligibility is decided on the PRE-increment count: an
		// attendee whose unique_duels_played already equals the cap gets
		// nothing from this match. The increment below must stay after this
		// check — reordering shifts the reward boundary by one.
		winnerEligible := winStats.UniqueDuelsPlayed < MaxScoringDuels
		loserEligible := loseStats.UniqueDuelsPlayed < MaxScoringDuels

		winStats.DuelsPlayed++
		winStats.DuelsWon++
		loseStats.DuelsPlayed++
		if duel.IsScoringDuel {
			winStats.UniqueDuelsPlayed++
			loseStats.UniqueDuelsPlayed++
		}

		// Only duel_stats is written back here; points move exclusively
		// through the atomic AwardPoints increment.
		if err := s.Profiles.saveDuelStats(tx, winnerID, winner.DuelStats); err != nil {
			return err
		}
		if err := s.Profiles.saveDuelStats(tx, loserID, loser.DuelStats); err != nil {
			return err
		}

		if duel.IsScoringDuel && winnerEligible {
			if err := s.Profiles.AwardPoints(tx, winnerID, WinningPoints); err != nil {
				return err
			}
		}
		if duel.IsScoringDuel && loserEligible {
			if err := s.Profiles.AwardPoints(tx, loserID, ParticipationPoints); err != nil {
				return err
			}
		}

		duel.HasFinished = true
		if err := s.saveDuelTx(tx, duel); err != nil {
			duel.HasFinished = false
			return err
		}

		log.Printf("[DUEL] 🏆 Duel %s won by %s (scoring=%t, winner eligible=%t, loser eligible=%t)",
			duel.ID, winnerID, duel.IsScoringDuel, winnerEligible, loserEligible)
		return nil
	})
}
