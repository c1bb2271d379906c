package stack

import "github.com/pkg/errors"

var ErrStackEmpty = errors.New("stack is empty")

// Stack is a LIFO container backed by a slice.
type Stack[T any] struct{ underlying []T }

func New[T any](cap uint) *Stack[T] {
	return &Stack[T]{underlying: make([]T, 0, cap)}
}

func (s *Stack[T]) Len() uint { return uint(len(s.underlying)) }

// Data returns a copy of the elements from bottom to top.
func (s *Stack[T]) Data() []T {
	out := make([]T, len(s.underlying))
	copy(out, s.underlying)
	return out
}

func (s *Stack[T]) Push(data T) {
	s.underlying = append(s.underlying, data)
}

func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if s.Len() == 0 {
		return zero, ErrStackEmpty
	}

	top := len(s.underlying) - 1
	data := s.underlying[top]
	s.underlying[top] = zero // drop the reference.
	s.underlying = s.underlying[:top]

	return data, nil
}

func (s *Stack[T]) Peek() (T, error) {
	if s.Len() == 0 {
		var zero T
		return zero, ErrStackEmpty
	}

	return s.underlying[len(s.underlying)-1], nil
}
