package queue

import "bytes"

// mirror is the optional in-memory copy of one queue's values in index
// order. It is owned by a single engine instance and never shared.
type mirror struct {
	values [][]byte
}

func newMirror(values [][]byte) *mirror {
	m := &mirror{}
	m.reset(values)
	return m
}

func (m *mirror) len() int {
	return len(m.values)
}

func (m *mirror) push(values ...[]byte) {
	for _, value := range values {
		m.values = append(m.values, cloneValue(value))
	}
}

// dropFront discards up to n values from the front.
func (m *mirror) dropFront(n int) {
	if n <= 0 {
		return
	}
	if n >= len(m.values) {
		m.values = m.values[:0]
		return
	}
	remaining := make([][]byte, len(m.values)-n)
	copy(remaining, m.values[n:])
	m.values = remaining
}

// popFront removes and returns up to n values from the front.
func (m *mirror) popFront(n int) [][]byte {
	if n > len(m.values) {
		n = len(m.values)
	}
	if n <= 0 {
		return [][]byte{}
	}
	popped := cloneValues(m.values[:n])
	m.dropFront(n)
	return popped
}

// slice returns copies of up to count values starting at offset. A
// non-positive count reads through the end.
func (m *mirror) slice(offset, count int) [][]byte {
	if offset < 0 || offset >= len(m.values) {
		return [][]byte{}
	}
	end := len(m.values)
	if count > 0 && count < end-offset {
		end = offset + count
	}
	return cloneValues(m.values[offset:end])
}

func (m *mirror) reset(values [][]byte) {
	m.values = cloneValues(values)
}

func cloneValue(value []byte) []byte {
	if value == nil {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

func cloneValues(values [][]byte) [][]byte {
	out := make([][]byte, len(values))
	for i, value := range values {
		out[i] = cloneValue(value)
	}
	return out
}

func equalValues(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
