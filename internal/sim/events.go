package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/balls/internal/physics"
)

type EventKind int

const (
	SpawnEvent EventKind = iota
	RemoveEvent
)

func (k EventKind) String() string {
	switch k {
	case SpawnEvent:
		return "spawn"
	case RemoveEvent:
		return "remove"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event mutates the world between ticks once simulated time reaches At.
type Event struct {
	At   float64
	Kind EventKind
	Body physics.Body   // spawn
	ID   physics.Handle // remove
}

type eventQueue struct {
	events []Event
	next   int
}

func newEventQueue(events []Event) *eventQueue {
	q := &eventQueue{events: append([]Event(nil), events...)}
	sort.SliceStable(q.events, func(i, j int) bool { return q.events[i].At < q.events[j].At })
	return q
}

// due pops every event with At <= t, in schedule order.
func (q *eventQueue) due(t float64) []Event {
	start := q.next
	for q.next < len(q.events) && q.events[q.next].At <= t {
		q.next++
	}
	return q.events[start:q.next]
}

func apply(w *physics.World, ev Event) error {
	switch ev.Kind {
	case SpawnEvent:
		if !ev.Body.IsValid() || !(ev.Body.Radius > 0) || !(ev.Body.Mass > 0) {
			return fmt.Errorf("%w: spawn at t=%v", physics.ErrInvalidBody, ev.At)
		}
		w.Add(ev.Body)
		return nil
	case RemoveEvent:
		return w.Remove(ev.ID)
	default:
		return fmt.Errorf("sim: unknown event kind %v", ev.Kind)
	}
}

// Timeline plays events against a world outside a Simulator run, as the
// live view does.
type Timeline struct {
	queue *eventQueue
}

func NewTimeline(events []Event) *Timeline {
	return &Timeline{queue: newEventQueue(events)}
}

// Advance applies every event due by t and returns how many were applied.
// A failing event is skipped and reported after the rest have run.
func (tl *Timeline) Advance(w *physics.World, t float64) (int, error) {
	var errs []error
	n := 0
	for _, ev := range tl.queue.due(t) {
		if err := apply(w, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s event at t=%v: %w", ev.Kind, ev.At, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (tl *Timeline) Pending() int { return len(tl.queue.events) - tl.queue.next }
