// Package sequencer decides the order in which titles are offered.
package sequencer

import (
	"math/rand/v2"

	"emojiplot/internal/movieplot"
)

// Rand is the randomness a Sequencer needs. *rand.Rand satisfies it.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

// Sequencer builds shuffled title orders.
type Sequencer struct {
	rng Rand
}

// New returns a Sequencer drawing from rng, or from a freshly seeded PCG
// source when rng is nil.
func New(rng Rand) *Sequencer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sequencer{rng: rng}
}

// BuildOrder returns a uniformly random permutation of titles. When any title
// has its key in cached, one such title chosen uniformly at random is moved
// to the front; the relative order of the rest is left untouched.
func (s *Sequencer) BuildOrder(titles []string, cached map[string]struct{}) []string {
	order := append([]string(nil), titles...)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var hits []int
	for i, title := range order {
		if _, ok := cached[movieplot.KeyFor(title)]; ok {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return order
	}
	pick := hits[s.rng.IntN(len(hits))]
	first := order[pick]
	copy(order[1:pick+1], order[:pick])
	order[0] = first
	return order
}

// IsExhausted reports whether no titles remain.
func IsExhausted(queue []string) bool {
	return len(queue) == 0
}

// Queue is the not-yet-offered remainder of an order.
type Queue struct {
	items []string
}

// NewQueue wraps order. The slice is copied.
func NewQueue(order []string) *Queue {
	return &Queue{items: append([]string(nil), order...)}
}

// Pop removes and returns the head title.
func (q *Queue) Pop() (string, bool) {
	if IsExhausted(q.items) {
		return "", false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Len returns the number of titles left.
func (q *Queue) Len() int {
	return len(q.items)
}

// Exhausted reports whether the queue is empty.
func (q *Queue) Exhausted() bool {
	return IsExhausted(q.items)
}
