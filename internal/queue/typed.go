package queue

import (
	"context"
	"strconv"

	json "github.com/goccy/go-json"
)

// Codec converts queue values of type T to and from stored payloads.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSONCodec stores values as JSON documents.
type JSONCodec[T any] struct{}

// Encode marshals value to JSON.
func (JSONCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

// Decode unmarshals a JSON payload into a T.
func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}

// Typed wraps a Queue and converts values through a Codec.
type Typed[T any] struct {
	q     *Queue
	codec Codec[T]
}

// NewTyped returns a typed view over q. A nil codec selects JSONCodec.
func NewTyped[T any](q *Queue, codec Codec[T]) *Typed[T] {
	if codec == nil {
		codec = JSONCodec[T]{}
	}
	return &Typed[T]{q: q, codec: codec}
}

// Queue returns the underlying engine.
func (t *Typed[T]) Queue() *Queue { return t.q }

// Append encodes values and appends them in order. Nothing is stored when
// any value fails to encode.
func (t *Typed[T]) Append(ctx context.Context, values ...T) error {
	payloads := make([][]byte, 0, len(values))
	for i, value := range values {
		data, err := t.codec.Encode(value)
		if err != nil {
			return wrap(ErrCodec, "encode value "+strconv.Itoa(i), err)
		}
		payloads = append(payloads, data)
	}
	return t.q.Append(ctx, payloads...)
}

// Remove takes the oldest value off the queue and decodes it.
func (t *Typed[T]) Remove(ctx context.Context) (T, bool, error) {
	var zero T
	data, ok, err := t.q.Remove(ctx)
	if err != nil || !ok {
		return zero, ok, err
	}
	value, err := t.decode(data, 0)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// RemoveN removes up to n values. The values are gone from the queue even
// when one of them fails to decode.
func (t *Typed[T]) RemoveN(ctx context.Context, n int) ([]T, error) {
	payloads, err := t.q.RemoveN(ctx, n)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(payloads)
}

// ReadAll decodes every value, oldest first.
func (t *Typed[T]) ReadAll(ctx context.Context) ([]T, error) {
	payloads, err := t.q.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(payloads)
}

// ReadRange decodes up to count values starting at offset.
func (t *Typed[T]) ReadRange(ctx context.Context, offset, count int) ([]T, error) {
	payloads, err := t.q.ReadRange(ctx, offset, count)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(payloads)
}

// At decodes the value at offset without removing it.
func (t *Typed[T]) At(ctx context.Context, offset int) (T, bool, error) {
	var zero T
	data, ok, err := t.q.At(ctx, offset)
	if err != nil || !ok {
		return zero, ok, err
	}
	value, err := t.decode(data, offset)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Len returns the number of values in the queue.
func (t *Typed[T]) Len(ctx context.Context) (int, error) { return t.q.Len(ctx) }

// Clear deletes every value of the queue.
func (t *Typed[T]) Clear(ctx context.Context) error { return t.q.Clear(ctx) }

func (t *Typed[T]) decode(data []byte, position int) (T, error) {
	value, err := t.codec.Decode(data)
	if err != nil {
		return value, wrap(ErrCodec, "decode value "+strconv.Itoa(position), err)
	}
	return value, nil
}

func (t *Typed[T]) decodeAll(payloads [][]byte) ([]T, error) {
	values := make([]T, 0, len(payloads))
	for i, data := range payloads {
		value, err := t.decode(data, i)
		if err != nil {
			return values, err
		}
		values = append(values, value)
	}
	return values, nil
}
