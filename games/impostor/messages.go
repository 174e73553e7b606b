/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

const (
	TypeRoomUpdate       = "room_update"
	TypePlayers          = "players"
	TypeRoundStarted     = "round_started"
	TypeRoleAssigned     = "role_assigned"
	TypePlayerEliminated = "player_eliminated"
	TypeRoundEnded       = "round_ended"
	TypeVoteTied         = "vote_tied"
	TypeWelcome          = "welcome"
)

type Role string

const (
	RoleImpostor Role = "Impostor"
	RoleCrew     Role = "Crew"
)

type Winner string

const (
	WinnerPlayers  Winner = "players"
	WinnerImpostor Winner = "impostor"
)

const (
	ReasonImpostorEliminated = "impostor_eliminated"
	ReasonImpostorSurvived   = "impostor_survived"

	tiedAnnouncement       = "The vote was tied, nobody was eliminated. Vote again!"
	eliminatedAnnouncement = "The impostor is still among you."
)

// PublicPlayer is the part of a player everyone in the room may see.
type PublicPlayer struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Ready bool        `json:"ready"`
	State PlayerState `json:"state"`
}

// RoomSnapshotMessage is broadcast after every roster, readiness or status change.
type RoomSnapshotMessage struct {
	Type    string         `json:"type"` // "room_update"
	ID      string         `json:"id"`
	Status  Status         `json:"status"`
	Players []PublicPlayer `json:"players"`
}

// RosterPlayer is one entry of the roster detail used to build vote candidate lists.
type RosterPlayer struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	State      PlayerState `json:"state"`
	Spectating bool        `json:"spectating,omitempty"`
}

// RosterMessage lists every player with alive/out state.
type RosterMessage struct {
	Type    string         `json:"type"` // "players"
	Players []RosterPlayer `json:"players"`
}

type RoundStartedMessage struct {
	Type             string `json:"type"` // "round_started"
	AlivePlayerCount int    `json:"alive_player_count"`
}

// RoleAssignedMessage is sent privately to each player when a round starts.
type RoleAssignedMessage struct {
	Type  string `json:"type"` // "role_assigned"
	Role  Role   `json:"role"`
	Value string `json:"value"`
}

type PlayerEliminatedMessage struct {
	Type        string `json:"type"` // "player_eliminated"
	ID          string `json:"id"`
	Name        string `json:"name"`
	WasImpostor bool   `json:"was_impostor"`
	Message     string `json:"message,omitempty"`
}

type RoundEndedMessage struct {
	Type   string `json:"type"` // "round_ended"
	Winner Winner `json:"winner"`
	Reason string `json:"reason,omitempty"`
}

type VoteTiedMessage struct {
	Type    string `json:"type"` // "vote_tied"
	Message string `json:"message"`
}

// WelcomeMessage tells a freshly connected client which player it is.
type WelcomeMessage struct {
	Type     string `json:"type"` // "welcome"
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
}

// Snapshot projects the public room state. Players appear in join order,
// so unchanged state always encodes to identical bytes.
func (r *Room) Snapshot() RoomSnapshotMessage {
	return r.snapshot()
}

func (r *Room) snapshot() RoomSnapshotMessage {
	players := make([]PublicPlayer, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		players = append(players, PublicPlayer{
			ID:    p.ID,
			Name:  p.Name,
			Ready: p.Ready,
			State: p.State,
		})
	}

	return RoomSnapshotMessage{
		Type:    TypeRoomUpdate,
		ID:      r.id,
		Status:  r.status,
		Players: players,
	}
}

// Roster projects every player with alive/out state.
func (r *Room) Roster() RosterMessage {
	players := make([]RosterPlayer, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		players = append(players, RosterPlayer{
			ID:         p.ID,
			Name:       p.Name,
			State:      p.State,
			Spectating: p.spectating,
		})
	}

	return RosterMessage{
		Type:    TypePlayers,
		Players: players,
	}
}
