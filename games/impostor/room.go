/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"maps"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusLobby   Status = "lobby"
	StatusPlaying Status = "playing"
)

type PlayerState string

const (
	StateAlive PlayerState = "alive"
	StateOut   PlayerState = "out"
)

const (
	// MinPlayers is the smallest number of alive players a round can start with.
	MinPlayers = 3

	// ImpostorMarker is the assignment handed to the impostor in place of the identity.
	ImpostorMarker = "Impostor"

	DefaultName       = "Anonymous"
	DefaultNameLength = 20
)

// Player holds the data we store server-side
type Player struct {
	ID         string
	Name       string
	Ready      bool
	IsImpostor bool
	Assignment string
	State      PlayerState

	// joined mid-round; holds no role or vote until the next round starts
	spectating bool
}

func (p *Player) participating() bool {
	return p.State == StateAlive && !p.spectating
}

// Settings are the per-room knobs handed down from the command line.
type Settings struct {
	RestartDelay time.Duration
	StartDelay   time.Duration
	NameLength   int
}

func DefaultSettings() Settings {
	return Settings{
		RestartDelay: 3 * time.Second,
		StartDelay:   time.Second,
		NameLength:   DefaultNameLength,
	}
}

// Room is the state machine for a single game room. It is not safe for
// concurrent use; a Session owns it and feeds it one command at a time.
type Room struct {
	id       string
	status   Status
	players  map[string]*Player
	order    []string
	identity string
	votes    map[string]string

	generation uint64

	pool     *Pool
	rng      Rand
	settings Settings
}

func NewRoom(id string, pool *Pool, rng Rand, settings Settings) *Room {
	if settings.NameLength < 1 {
		settings.NameLength = DefaultNameLength
	}

	return &Room{
		id:       id,
		status:   StatusLobby,
		players:  make(map[string]*Player),
		votes:    make(map[string]string),
		pool:     pool,
		rng:      rng,
		settings: settings,
	}
}

func (r *Room) ID() string { return r.id }
func (r *Room) Status() Status { return r.status }
func (r *Room) Identity() string { return r.identity }
func (r *Room) Generation() uint64 { return r.generation }
func (r *Room) Len() int { return len(r.players) }
func (r *Room) Empty() bool { return len(r.players) == 0 }
func (r *Room) Player(id string) *Player { return r.players[id] }

// Votes returns a copy of the current ballot ledger.
func (r *Room) Votes() map[string]string {
	out := make(map[string]string, len(r.votes))
	for k, v := range r.votes {
		out[k] = v
	}
	return out
}

// alive returns the ids of players taking part in the current round, in join order.
func (r *Room) alive() []string {
	ids := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.players[id].participating() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Room) cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if utf8.RuneCountInString(name) > r.settings.NameLength {
		name = string([]rune(name)[:r.settings.NameLength])
	}
	return name
}

// Join adds a player to the roster. Players arriving while a round is in
// progress sit it out and take part from the next round onward.
func (r *Room) Join(playerID, name string) Result {
	var res Result

	if playerID == "" {
		return res
	}
	if _, ok := r.players[playerID]; ok {
		return res
	}

	r.players[playerID] = &Player{
		ID:         playerID,
		Name:       r.cleanName(name),
		State:      StateAlive,
		spectating: r.status == StatusPlaying,
	}
	r.order = append(r.order, playerID)

	res.emitState(r)
	return res
}

// SetReady updates a player's readiness and starts the round once every
// alive player in the lobby is ready.
func (r *Room) SetReady(playerID string, ready bool) Result {
	var res Result

	p, ok := r.players[playerID]
	if !ok {
		return res
	}
	p.Ready = ready

	res.add(r.snapshot())

	if r.status == StatusLobby && r.allReady() {
		res.merge(r.StartRound())
	}
	return res
}

func (r *Room) allReady() bool {
	ids := r.alive()
	if len(ids) < MinPlayers {
		return false
	}
	for _, id := range ids {
		if !r.players[id].Ready {
			return false
		}
	}
	return true
}

// StartRound picks the impostor, draws the identity and hands out roles.
// It is a no-op with fewer than MinPlayers alive or an empty identity pool.
func (r *Room) StartRound() Result {
	var res Result

	for _, p := range r.players {
		p.spectating = false
	}

	ids := r.alive()
	if len(ids) < MinPlayers {
		return res
	}

	identity, ok := r.pool.Draw(r.rng)
	if !ok {
		return res
	}

	r.generation++
	r.status = StatusPlaying
	r.identity = identity
	clear(r.votes)

	impostorID := ids[r.rng.IntN(len(ids))]

	for _, p := range r.players {
		p.IsImpostor = false
		p.Assignment = ""
		p.Ready = false
	}

	for _, id := range ids {
		p := r.players[id]
		p.State = StateAlive

		msg := RoleAssignedMessage{Type: TypeRoleAssigned, Role: RoleCrew, Value: identity}
		if id == impostorID {
			p.IsImpostor = true
			p.Assignment = ImpostorMarker
			msg.Role = RoleImpostor
			msg.Value = ImpostorMarker
		} else {
			p.Assignment = identity
		}

		res.addTo(id, msg)
	}

	res.add(RoundStartedMessage{Type: TypeRoundStarted, AlivePlayerCount: len(ids)})
	res.emitState(r)

	return res
}

// CastVote records a ballot. Once every alive player has voted the ballots
// are tallied.
func (r *Room) CastVote(voterID, targetID string) Result {
	var res Result

	if r.status != StatusPlaying {
		return res
	}

	voter, ok := r.players[voterID]
	if !ok || !voter.participating() {
		return res
	}

	target, ok := r.players[targetID]
	if !ok || !target.participating() {
		return res
	}

	r.votes[voterID] = targetID

	if len(r.votes) == len(r.alive()) {
		res.merge(r.Tally())
	}
	return res
}

// RestartRound returns the room to the lobby and schedules the next round.
func (r *Room) RestartRound() Result {
	var res Result

	r.generation++
	r.status = StatusLobby
	r.identity = ""
	clear(r.votes)

	for _, p := range r.players {
		p.Ready = false
		p.IsImpostor = false
		p.Assignment = ""
		p.State = StateAlive
		p.spectating = false
	}

	res.emitState(r)
	res.schedule(TaskStartRound, r.settings.StartDelay, r.generation)

	return res
}

// Leave removes a player. Ballots cast by or against the leaver are
// discarded so those voters vote again; the round itself is not
// re-evaluated.
func (r *Room) Leave(playerID string) Result {
	var res Result

	if _, ok := r.players[playerID]; !ok {
		return res
	}

	delete(r.players, playerID)
	maps.DeleteFunc(r.votes, func(voter, target string) bool {
		return voter == playerID || target == playerID
	})
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.Empty() {
		return res
	}

	res.emitState(r)
	return res
}

// Fire runs a scheduled transition if the room is still on the generation
// the task was issued for.
func (r *Room) Fire(t Task) Result {
	if t.Generation != r.generation || r.Empty() {
		return Result{}
	}

	switch t.Kind {
	case TaskRestartRound:
		if r.status != StatusPlaying {
			return Result{}
		}
		return r.RestartRound()
	case TaskStartRound:
		if r.status != StatusLobby {
			return Result{}
		}
		return r.StartRound()
	}

	return Result{}
}
