/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// seqRand replays a fixed sequence of picks, wrapped into range.
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func testPool() *Pool {
	return NewPool([]string{"Lionel Messi", "Pelé", "Johan Cruyff"})
}

// newTestRoom returns a lobby with n joined players named p1..pn.
// Picks are taken from rng; pass nil for a seeded source.
func newTestRoom(t *testing.T, n int, rng Rand) *Room {
	t.Helper()

	if rng == nil {
		rng = NewRand(42)
	}

	r := NewRoom("ROOM01", testPool(), rng, DefaultSettings())
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		r.Join(id, "Player "+id)
	}
	return r
}

// startedRoom readies n players with the impostor fixed at p<impostor>.
func startedRoom(t *testing.T, n, impostor int) *Room {
	t.Helper()

	// first pick is the identity, second is the impostor index
	r := newTestRoom(t, n, &seqRand{vals: []int{0, impostor - 1}})
	for i := 1; i <= n; i++ {
		r.SetReady(fmt.Sprintf("p%d", i), true)
	}
	if r.Status() != StatusPlaying {
		t.Fatalf("room did not start: status %q", r.Status())
	}
	if !r.Player(fmt.Sprintf("p%d", impostor)).IsImpostor {
		t.Fatalf("expected p%d to be the impostor", impostor)
	}
	return r
}

func messagesOf[T any](res Result) []T {
	var out []T
	for _, ev := range res.Events {
		if m, ok := ev.Message.(T); ok {
			out = append(out, m)
		}
	}
	return out
}

type sentMessage struct {
	room string
	to   string
	msg  any
}

type recorder struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recorder) Broadcast(roomID string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{room: roomID, msg: msg})
}

func (r *recorder) Send(roomID, playerID string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{room: roomID, to: playerID, msg: msg})
}

func (r *recorder) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

// manualScheduler holds scheduled functions until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
	m.delays = append(m.delays, d)
}

func (m *manualScheduler) fire() int {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func (m *manualScheduler) lastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.delays) == 0 {
		return 0
	}
	return m.delays[len(m.delays)-1]
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
