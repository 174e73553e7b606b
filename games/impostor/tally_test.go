/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"slices"
	"testing"
)

func TestCountVotes(t *testing.T) {
	tests := []struct {
		name    string
		votes   map[string]string
		top     []string
		highest int
	}{
		{"empty", map[string]string{}, nil, 0},
		{"single", map[string]string{"a": "x"}, []string{"x"}, 1},
		{"clear winner", map[string]string{"a": "x", "b": "y", "c": "x"}, []string{"x"}, 2},
		{"two way tie", map[string]string{"a": "x", "b": "y"}, []string{"x", "y"}, 1},
		{"tie at top only", map[string]string{"a": "x", "b": "x", "c": "y", "d": "y", "e": "z"}, []string{"x", "y"}, 2},
		{"unanimous", map[string]string{"a": "z", "b": "z", "c": "z"}, []string{"z"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, highest := countVotes(tt.votes)
			if !slices.Equal(top, tt.top) {
				t.Errorf("top = %v, want %v", top, tt.top)
			}
			if highest != tt.highest {
				t.Errorf("highest = %d, want %d", highest, tt.highest)
			}
		})
	}
}

func TestTallyOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		players int
		votes   map[string]string
		want    Outcome
	}{
		{"impostor voted out", 3, map[string]string{"p1": "p2", "p2": "p1", "p3": "p1"}, OutcomePlayersWin},
		{"impostor reaches final two", 3, map[string]string{"p1": "p3", "p2": "p3", "p3": "p2"}, OutcomeImpostorWins},
		{"crew voted out", 4, map[string]string{"p1": "p4", "p2": "p4", "p3": "p4", "p4": "p2"}, OutcomeEliminated},
		{"tie", 4, map[string]string{"p1": "p2", "p2": "p1", "p3": "p1", "p4": "p2"}, OutcomeTied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := startedRoom(t, tt.players, 1)
			for voter, target := range tt.votes {
				r.votes[voter] = target
			}

			_, got := r.tally()
			if got != tt.want {
				t.Fatalf("outcome = %s, want %s", got, tt.want)
			}
			if len(r.votes) != 0 {
				t.Fatal("votes not cleared")
			}
		})
	}
}

func TestTallyOutsideRoundIsNoop(t *testing.T) {
	r := newTestRoom(t, 3, nil)
	r.votes["p1"] = "p2"

	res, outcome := r.tally()
	if outcome != OutcomeNone || len(res.Events) != 0 {
		t.Fatalf("tally in lobby = %s with %d events", outcome, len(res.Events))
	}
}
