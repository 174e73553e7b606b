/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomIDLength   = 6
)

var ErrRoomNotFound = errors.New("room not found")

// Options configures a Registry. Zero values fall back to production defaults.
type Options struct {
	Pool        *Pool
	Rand        Rand
	Settings    Settings
	Broadcaster Broadcaster
	Scheduler   Scheduler
	Logger      *zap.Logger

	// IdleTimeout is how long a room with no players survives before the
	// reaper removes it. Zero disables reaping.
	IdleTimeout time.Duration

	// NewID overrides room id generation.
	NewID func() string
}

// Registry owns every active room session, keyed by room id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	opts   Options
	logger *zap.Logger
}

func NewRegistry(opts Options) *Registry {
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = discard{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = newRoomID
	}

	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   opts.Logger,
	}
}

type discard struct{}

func (discard) Broadcast(string, any) {}
func (discard) Send(string, string, any) {}

// newRoomID generates a crypto-random room code.
func newRoomID() string {
	buf := make([]byte, roomIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, roomIDLength)
	for i := range out {
		out[i] = roomIDAlphabet[int(buf[i])%len(roomIDAlphabet)]
	}
	return string(out)
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Create starts a new empty room in the lobby and returns its id.
func (reg *Registry) Create() string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var id string
	for {
		id = normalizeID(reg.opts.NewID())
		if _, exists := reg.sessions[id]; !exists && id != "" {
			break
		}
	}

	room := NewRoom(id, reg.opts.Pool, reg.opts.Rand, reg.opts.Settings)
	s := newSession(room, reg.opts.Broadcaster, reg.opts.Scheduler, reg.logger, func(roomID string) {
		reg.RemoveIfEmpty(roomID)
	})
	reg.sessions[id] = s
	go s.run()

	reg.logger.Info("room created", zap.String("room", id))

	return id
}

func (reg *Registry) Exists(id string) bool {
	return reg.Get(id) != nil
}

// Get returns the session for id, or nil if there is no such room.
func (reg *Registry) Get(id string) *Session {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return reg.sessions[normalizeID(id)]
}

// Lookup is Get with an error for callers that want one.
func (reg *Registry) Lookup(id string) (*Session, error) {
	s := reg.Get(id)
	if s == nil {
		return nil, fmt.Errorf("room %s: %w", normalizeID(id), ErrRoomNotFound)
	}
	return s, nil
}

// RemoveIfEmpty deletes the room once its roster is empty and reports
// whether it did.
func (reg *Registry) RemoveIfEmpty(id string) bool {
	id = normalizeID(id)

	reg.mu.Lock()
	defer reg.mu.Unlock()

	s, ok := reg.sessions[id]
	if !ok || s.Len() > 0 {
		return false
	}

	delete(reg.sessions, id)
	s.stop()

	reg.logger.Info("room deleted", zap.String("room", id))

	return true
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.sessions)
}

// Reap removes rooms that have had no players since before cutoff.
func (reg *Registry) Reap(cutoff time.Time) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	n := 0
	for id, s := range reg.sessions {
		if s.Len() == 0 && s.LastActive().Before(cutoff) {
			delete(reg.sessions, id)
			s.stop()
			n++
		}
	}

	if n > 0 {
		reg.logger.Info("reaped idle rooms", zap.Int("count", n))
	}

	return n
}

// Run reaps idle rooms until ctx is cancelled, then stops every session.
func (reg *Registry) Run(ctx context.Context) {
	defer reg.Close()

	if reg.opts.IdleTimeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(reg.opts.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			reg.Reap(now.Add(-reg.opts.IdleTimeout))
		}
	}
}

// Close stops every session and forgets every room.
func (reg *Registry) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for id, s := range reg.sessions {
		delete(reg.sessions, id)
		s.stop()
	}
}
