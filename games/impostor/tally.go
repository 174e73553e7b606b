/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "slices"

// Outcome is the result of counting a full set of ballots.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeTied
	OutcomeEliminated
	OutcomePlayersWin
	OutcomeImpostorWins
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTied:
		return "tied"
	case OutcomeEliminated:
		return "eliminated"
	case OutcomePlayersWin:
		return "players_win"
	case OutcomeImpostorWins:
		return "impostor_wins"
	}
	return "none"
}

// countVotes returns the targets holding the highest vote count, in a
// stable order.
func countVotes(votes map[string]string) (top []string, highest int) {
	counts := make(map[string]int, len(votes))
	for _, target := range votes {
		counts[target]++
	}

	for target, n := range counts {
		switch {
		case n > highest:
			highest = n
			top = append(top[:0], target)
		case n == highest:
			top = append(top, target)
		}
	}
	slices.Sort(top)

	return top, highest
}

// Tally counts the ballots and applies the outcome. Any tie for the highest
// count eliminates nobody.
func (r *Room) Tally() Result {
	res, _ := r.tally()
	return res
}

func (r *Room) tally() (Result, Outcome) {
	var res Result

	if r.status != StatusPlaying || len(r.votes) == 0 {
		return res, OutcomeNone
	}

	top, _ := countVotes(r.votes)
	clear(r.votes)

	if len(top) != 1 {
		res.add(VoteTiedMessage{Type: TypeVoteTied, Message: tiedAnnouncement})
		res.emitState(r)
		return res, OutcomeTied
	}

	eliminated, ok := r.players[top[0]]
	if !ok || !eliminated.participating() {
		res.emitState(r)
		return res, OutcomeNone
	}
	eliminated.State = StateOut

	alive := r.alive()
	impostorAlive := slices.ContainsFunc(alive, func(id string) bool {
		return r.players[id].IsImpostor
	})

	outcome := OutcomeEliminated
	switch {
	case eliminated.IsImpostor:
		outcome = OutcomePlayersWin
		res.add(RoundEndedMessage{Type: TypeRoundEnded, Winner: WinnerPlayers, Reason: ReasonImpostorEliminated})
	case len(alive) == 2 && impostorAlive:
		outcome = OutcomeImpostorWins
		res.add(RoundEndedMessage{Type: TypeRoundEnded, Winner: WinnerImpostor, Reason: ReasonImpostorSurvived})
	default:
		res.add(PlayerEliminatedMessage{
			Type:        TypePlayerEliminated,
			ID:          eliminated.ID,
			Name:        eliminated.Name,
			WasImpostor: eliminated.IsImpostor,
			Message:     eliminatedAnnouncement,
		})
	}

	if outcome != OutcomeEliminated {
		res.schedule(TaskRestartRound, r.settings.RestartDelay, r.generation)
	}

	res.emitState(r)

	return res, outcome
}
