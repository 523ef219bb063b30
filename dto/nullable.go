package dto

import "github.com/bytedance/sonic"

// Nullable tells an absent JSON field apart from an explicit null. Set is true
// whenever the field appeared in the body; Value is nil for null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Of returns a Nullable holding v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns an explicitly cleared Nullable.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return sonic.Marshal(*n.Value)
}
