// Package vector provides the float32 vector math used by the stores:
// L2 normalisation, cosine similarity and top-k selection.
package vector

import (
	"container/heap"
	"math"
	"sort"
)

// Magnitude calculates the Euclidean magnitude (L2 norm) of a vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v.
// Returns nil if the input is empty or has zero magnitude.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	mag := Magnitude(v)
	if mag == 0 {
		return nil
	}

	result := make([]float32, len(v))
	for i, x := range v {
		result[i] = float32(float64(x) / mag)
	}
	return result
}

// Dot calculates the dot product of two vectors.
// Returns 0 if the vectors have different lengths.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var result float64
	for i := range a {
		result += float64(a[i]) * float64(b[i])
	}
	return result
}

// Cosine calculates the cosine similarity of two vectors.
// Returns 0 if the vectors differ in length, are empty, or either has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Centroid returns the normalised mean of the normalised input vectors.
// Vectors whose length differs from the first are skipped. Returns nil when
// nothing usable remains.
func Centroid(vs [][]float32) []float32 {
	var sum []float64
	for _, v := range vs {
		n := Normalize(v)
		if n == nil {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(n))
		}
		if len(n) != len(sum) {
			continue
		}
		for i, x := range n {
			sum[i] += float64(x)
		}
	}
	if sum == nil {
		return nil
	}

	out := make([]float32, len(sum))
	for i, x := range sum {
		out[i] = float32(x)
	}
	return Normalize(out)
}

// ScoredItem represents an item with a score for top-k selection.
// Key breaks score ties: lower keys rank first.
type ScoredItem[T any] struct {
	Item  T
	Score float64
	Key   int64
}

// ranksBelow reports whether a ranks strictly below b.
func ranksBelow[T any](a, b ScoredItem[T]) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Key > b.Key
}

// minHeap keeps the weakest item at the root.
type minHeap[T any] []ScoredItem[T]

func (h minHeap[T]) Len() int           { return len(h) }
func (h minHeap[T]) Less(i, j int) bool { return ranksBelow(h[i], h[j]) }
func (h minHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap[T]) Push(x any) {
	*h = append(*h, x.(ScoredItem[T]))
}

func (h *minHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopK collects the k best items pushed into it in O(n log k).
type TopK[T any] struct {
	k int
	h minHeap[T]
}

// NewTopK creates a collector for the k best items.
func NewTopK[T any](k int) *TopK[T] {
	return &TopK[T]{k: k, h: make(minHeap[T], 0, max(k, 0))}
}

// Push offers an item.
func (t *TopK[T]) Push(item ScoredItem[T]) {
	if t.k <= 0 {
		return
	}
	if t.h.Len() < t.k {
		heap.Push(&t.h, item)
		return
	}
	if ranksBelow(t.h[0], item) {
		t.h[0] = item
		heap.Fix(&t.h, 0)
	}
}

// Sorted returns the collected items, best first.
func (t *TopK[T]) Sorted() []ScoredItem[T] {
	out := make([]ScoredItem[T], len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return ranksBelow(out[j], out[i]) })
	return out
}
