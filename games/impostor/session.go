/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Broadcaster delivers outbound messages to the clients of a room.
// Calls happen on the session goroutine and must not block.
type Broadcaster interface {
	Broadcast(roomID string, msg any)
	Send(roomID, playerID string, msg any)
}

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdReady
	cmdVote
	cmdLeave
	cmdTask
	cmdInspect
)

type command struct {
	kind     commandKind
	playerID string
	name     string
	target   string
	ready    bool
	task     Task
	inspect  func(*Room)
	reply    chan struct{}
}

// Session owns a Room and applies commands to it one at a time on its own
// goroutine, so room state needs no locking.
type Session struct {
	room *Room

	cmds chan command
	done chan struct{}
	once sync.Once

	out     Broadcaster
	sched   Scheduler
	logger  *zap.Logger
	onEmpty func(roomID string)

	lastActive atomic.Int64
	players    atomic.Int64
}

func newSession(room *Room, out Broadcaster, sched Scheduler, logger *zap.Logger, onEmpty func(string)) *Session {
	s := &Session{
		room:    room,
		cmds:    make(chan command, 64),
		done:    make(chan struct{}),
		out:     out,
		sched:   sched,
		logger:  logger.With(zap.String("room", room.ID())),
		onEmpty: onEmpty,
	}
	s.lastActive.Store(time.Now().UnixNano())

	return s
}

func (s *Session) ID() string { return s.room.ID() }

// Len is the roster size as of the last processed command.
func (s *Session) Len() int { return int(s.players.Load()) }

func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) Join(playerID, name string) {
	s.submit(command{kind: cmdJoin, playerID: playerID, name: name})
}

func (s *Session) SetReady(playerID string, ready bool) {
	s.submit(command{kind: cmdReady, playerID: playerID, ready: ready})
}

func (s *Session) CastVote(voterID, targetID string) {
	s.submit(command{kind: cmdVote, playerID: voterID, target: targetID})
}

func (s *Session) Leave(playerID string) {
	s.submit(command{kind: cmdLeave, playerID: playerID})
}

// Inspect runs fn against the room on the session goroutine and waits for
// it to finish. It reports false if the session has already stopped.
func (s *Session) Inspect(fn func(*Room)) bool {
	reply := make(chan struct{})
	if !s.submit(command{kind: cmdInspect, inspect: fn, reply: reply}) {
		return false
	}

	select {
	case <-reply:
		return true
	case <-s.done:
		return false
	}
}

// submit queues a command; commands for a stopped session are dropped.
func (s *Session) submit(c command) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.cmds <- c:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) stop() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Session) Stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) run() {
	for {
		select {
		case c := <-s.cmds:
			s.handle(c)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(c command) {
	var res Result

	switch c.kind {
	case cmdJoin:
		res = s.room.Join(c.playerID, c.name)
		if p := s.room.Player(c.playerID); p != nil && len(res.Events) > 0 {
			s.logger.Info("player joined", zap.String("player", c.playerID), zap.String("name", p.Name))
		}
	case cmdReady:
		res = s.room.SetReady(c.playerID, c.ready)
	case cmdVote:
		res = s.room.CastVote(c.playerID, c.target)
	case cmdLeave:
		res = s.room.Leave(c.playerID)
		s.logger.Info("player left", zap.String("player", c.playerID), zap.Int("remaining", s.room.Len()))
	case cmdTask:
		res = s.room.Fire(c.task)
		if len(res.Events) == 0 {
			s.logger.Debug("scheduled task had no effect",
				zap.Stringer("task", c.task.Kind),
				zap.Uint64("generation", c.task.Generation),
				zap.Uint64("current", s.room.Generation()))
		}
	case cmdInspect:
		c.inspect(s.room)
		close(c.reply)
		return
	}

	s.players.Store(int64(s.room.Len()))
	s.lastActive.Store(time.Now().UnixNano())

	s.dispatch(res)

	if c.kind == cmdLeave && s.room.Empty() && s.onEmpty != nil {
		s.onEmpty(s.room.ID())
	}
}

func (s *Session) dispatch(res Result) {
	id := s.room.ID()

	for _, ev := range res.Events {
		s.logEvent(ev.Message)

		if ev.To == "" {
			s.out.Broadcast(id, ev.Message)
		} else {
			s.out.Send(id, ev.To, ev.Message)
		}
	}

	for _, t := range res.Tasks {
		s.sched.AfterFunc(t.After, func() {
			s.submit(command{kind: cmdTask, task: t})
		})
	}
}

func (s *Session) logEvent(msg any) {
	switch m := msg.(type) {
	case RoundStartedMessage:
		s.logger.Info("round started",
			zap.Int("alive", m.AlivePlayerCount),
			zap.Uint64("generation", s.room.Generation()))
	case RoundEndedMessage:
		s.logger.Info("round ended", zap.String("winner", string(m.Winner)))
	case PlayerEliminatedMessage:
		s.logger.Info("player eliminated", zap.String("player", m.ID), zap.Bool("impostor", m.WasImpostor))
	case VoteTiedMessage:
		s.logger.Info("vote tied")
	}
}
