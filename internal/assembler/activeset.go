package assembler

import "sort"

// activeSet is the bounded-memory collection of in-progress output
// planes, keyed by plane index (spec.md §9: "a small, bounded set keyed
// by integer plane index with O(1) lookup, insertion, and ordered
// iteration on flush"). keys is kept sorted ascending so the flush gate
// and final flush can walk it in plane order without a full sort per
// call.
type activeSet struct {
	entries map[int][]float32
	keys    []int
}

func newActiveSet() *activeSet {
	return &activeSet{entries: make(map[int][]float32)}
}

// accumulator returns the W*H accumulator for plane k, creating a
// zero-initialized one if this is its first contribution.
func (s *activeSet) accumulator(k, size int) []float32 {
	if buf, ok := s.entries[k]; ok {
		return buf
	}
	buf := make([]float32, size)
	s.entries[k] = buf
	i := sort.SearchInts(s.keys, k)
	s.keys = append(s.keys, 0)
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = k
	return buf
}

// evictBelow flushes and removes every active plane with index < k0, in
// ascending order.
func (s *activeSet) evictBelow(k0 int, flush func(k int, data []float32) error) error {
	i := 0
	for i < len(s.keys) && s.keys[i] < k0 {
		k := s.keys[i]
		if err := flush(k, s.entries[k]); err != nil {
			return err
		}
		delete(s.entries, k)
		i++
	}
	s.keys = s.keys[i:]
	return nil
}

// flushAll flushes and removes every remaining active plane, ascending.
func (s *activeSet) flushAll(flush func(k int, data []float32) error) error {
	for _, k := range s.keys {
		if err := flush(k, s.entries[k]); err != nil {
			return err
		}
		delete(s.entries, k)
	}
	s.keys = nil
	return nil
}

// len reports the current active-set size (spec.md I6 bound).
func (s *activeSet) len() int {
	return len(s.keys)
}
