/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "time"

type TaskKind int

const (
	TaskRestartRound TaskKind = iota + 1
	TaskStartRound
)

func (k TaskKind) String() string {
	switch k {
	case TaskRestartRound:
		return "restart_round"
	case TaskStartRound:
		return "start_round"
	}
	return "unknown"
}

// Task is a delayed transition. Generation pins it to the round it was
// issued for; a task whose generation has moved on does nothing.
type Task struct {
	Kind       TaskKind
	After      time.Duration
	Generation uint64
}

// Event is an outbound message. An empty To means the whole room.
type Event struct {
	To      string
	Message any
}

// Result collects what a transition wants sent and scheduled.
type Result struct {
	Events []Event
	Tasks  []Task
}

func (res *Result) add(msg any) {
	res.Events = append(res.Events, Event{Message: msg})
}

func (res *Result) addTo(playerID string, msg any) {
	res.Events = append(res.Events, Event{To: playerID, Message: msg})
}

// emitState appends the public snapshot and roster detail.
func (res *Result) emitState(r *Room) {
	res.add(r.snapshot())
	res.add(r.Roster())
}

func (res *Result) schedule(kind TaskKind, after time.Duration, generation uint64) {
	res.Tasks = append(res.Tasks, Task{Kind: kind, After: after, Generation: generation})
}

func (res *Result) merge(other Result) {
	res.Events = append(res.Events, other.Events...)
	res.Tasks = append(res.Tasks, other.Tasks...)
}
