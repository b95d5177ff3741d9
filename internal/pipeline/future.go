package pipeline

type outcome[T any] struct {
	value T
	err   error
}

// future carries the result of one remote call started ahead of the state
// that consumes it. Each future is awaited at most once.
type future[T any] struct {
	ch chan outcome[T]
}

func startFuture[T any](fn func() (T, error)) *future[T] {
	f := &future[T]{ch: make(chan outcome[T], 1)}
	go func() {
		value, err := fn()
		f.ch <- outcome[T]{value: value, err: err}
	}()
	return f
}

func resolvedFuture[T any](value T) *future[T] {
	f := &future[T]{ch: make(chan outcome[T], 1)}
	f.ch <- outcome[T]{value: value}
	return f
}

func (f *future[T]) await() (T, error) {
	out := <-f.ch
	return out.value, out.err
}
