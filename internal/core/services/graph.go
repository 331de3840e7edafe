package services

import (
	"container/heap"
	"context"
	"iter"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
)

// adjacencySource answers one-hop neighbour lookups.
type adjacencySource interface {
	Adjacent(ctx context.Context, id domain.ChunkID) ([]domain.Adjacency, error)
}

// RelationshipGraph traverses the edge graph with decaying path weights.
type RelationshipGraph struct {
	source adjacencySource
}

// NewRelationshipGraph creates a graph over an edge store.
func NewRelationshipGraph(edges driven.EdgeStore) *RelationshipGraph {
	return &RelationshipGraph{source: edges}
}

// withMemo returns a graph whose adjacency lookups are cached for its lifetime
// and collapsed when issued concurrently. Intended for one request.
func (g *RelationshipGraph) withMemo() *RelationshipGraph {
	return &RelationshipGraph{source: newAdjacencyMemo(g.source)}
}

// Neighbors lazily yields chunks reachable from start within maxDepth hops.
//
// A path's weight is the product of edge weight times decay per hop, clamped
// to [0, 1]. Traversal is best-first. A chunk is yielded each time its best
// known weight strictly improves, so a chunk can appear more than once with
// increasing PathWeight; consumers keep the maximum. The start chunk is never
// yielded. A lookup error is yielded once and ends the sequence.
//
// The returned sequence can be ranged over more than once.
func (g *RelationshipGraph) Neighbors(
	ctx context.Context, start domain.ChunkID, maxDepth int, decay float64,
) iter.Seq2[domain.Neighbor, error] {
	return func(yield func(domain.Neighbor, error) bool) {
		if maxDepth <= 0 {
			return
		}

		t := newTraversal(start)
		for t.queue.Len() > 0 {
			if err := ctx.Err(); err != nil {
				yield(domain.Neighbor{}, err)
				return
			}

			cur := heap.Pop(&t.queue).(*pathLabel)
			if cur.dead || cur.hops >= maxDepth {
				continue
			}

			adj, err := g.source.Adjacent(ctx, cur.id)
			if err != nil {
				yield(domain.Neighbor{}, err)
				return
			}

			for _, a := range adj {
				w := clampUnit(cur.weight * a.Edge.Weight * decay)
				if w <= 0 {
					continue
				}
				next := &pathLabel{id: a.Neighbor.ID, weight: w, hops: cur.hops + 1}
				if !t.offer(next) {
					continue
				}
				if w > t.best[next.id] {
					t.best[next.id] = w
					if !yield(domain.Neighbor{Chunk: a.Neighbor, PathWeight: w, Hops: next.hops}, nil) {
						return
					}
				}
			}
		}
	}
}

// pathLabel is one non-dominated (weight, hops) pair reached for a chunk.
type pathLabel struct {
	id     domain.ChunkID
	weight float64
	hops   int
	dead   bool
}

// traversal keeps, per chunk, the labels not dominated by another label with
// fewer or equal hops and greater or equal weight.
type traversal struct {
	labels map[domain.ChunkID][]*pathLabel
	best   map[domain.ChunkID]float64
	queue  labelQueue
}

func newTraversal(start domain.ChunkID) *traversal {
	origin := &pathLabel{id: start, weight: 1}
	t := &traversal{
		labels: map[domain.ChunkID][]*pathLabel{start: {origin}},
		best:   map[domain.ChunkID]float64{start: 1},
		queue:  labelQueue{origin},
	}
	return t
}

// offer records l unless an existing label dominates it, retiring the labels
// l dominates. Accepted labels are queued.
func (t *traversal) offer(l *pathLabel) bool {
	existing := t.labels[l.id]
	for _, e := range existing {
		if e.hops <= l.hops && e.weight >= l.weight {
			return false
		}
	}

	kept := existing[:0]
	for _, e := range existing {
		if l.hops <= e.hops && l.weight >= e.weight {
			e.dead = true
			continue
		}
		kept = append(kept, e)
	}
	t.labels[l.id] = append(kept, l)
	heap.Push(&t.queue, l)
	return true
}

// labelQueue pops the heaviest label first, then the shortest, then the lowest ID.
type labelQueue []*pathLabel

func (q labelQueue) Len() int { return len(q) }

func (q labelQueue) Less(i, j int) bool {
	if q[i].weight != q[j].weight {
		return q[i].weight > q[j].weight
	}
	if q[i].hops != q[j].hops {
		return q[i].hops < q[j].hops
	}
	return q[i].id < q[j].id
}

func (q labelQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *labelQueue) Push(x any) { *q = append(*q, x.(*pathLabel)) }

func (q *labelQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func clampUnit(x float64) float64 {
	return min(1, max(0, x))
}

// adjacencyMemo caches adjacency lists for one request. Concurrent lookups of
// the same chunk share a single store call.
type adjacencyMemo struct {
	source adjacencySource
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[domain.ChunkID][]domain.Adjacency
}

func newAdjacencyMemo(source adjacencySource) *adjacencyMemo {
	return &adjacencyMemo{
		source: source,
		cache:  make(map[domain.ChunkID][]domain.Adjacency),
	}
}

// Adjacent returns the cached adjacency list, fetching it once on a miss.
// Failed lookups are not cached.
func (m *adjacencyMemo) Adjacent(ctx context.Context, id domain.ChunkID) ([]domain.Adjacency, error) {
	m.mu.RLock()
	adj, ok := m.cache[id]
	m.mu.RUnlock()
	if ok {
		return adj, nil
	}

	v, err, _ := m.group.Do(strconv.FormatInt(int64(id), 10), func() (any, error) {
		adj, err := m.source.Adjacent(ctx, id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[id] = adj
		m.mu.Unlock()
		return adj, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Adjacency), nil
}
