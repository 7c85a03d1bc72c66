package storage

import (
	"context"
	"errors"
	"sync"
)

// RecipeState loads a JSON recipe book.
type RecipeState interface {
	Load(ctx context.Context) ([]byte, error)
}

// ListSink persists a rendered grocery list under a target name.
type ListSink interface {
	Save(ctx context.Context, name string, data []byte) error
}

// Fanout saves to every sink and joins their errors.
type Fanout []ListSink

func (f Fanout) Save(ctx context.Context, name string, data []byte) error {
	var errs []error
	for _, s := range f {
		if err := s.Save(ctx, name, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TestRecipeState is a simple in-memory implementation for testing
type TestRecipeState struct {
	data []byte
	err  error
}

func NewTestRecipeState(data []byte) *TestRecipeState {
	return &TestRecipeState{data: data}
}

func NewTestRecipeStateWithError() *TestRecipeState {
	return &TestRecipeState{err: errors.New("not found")}
}

func (t *TestRecipeState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

// TestListSink records saved lists in memory for testing
type TestListSink struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func NewTestListSink() *TestListSink {
	return &TestListSink{saved: map[string][]byte{}}
}

func NewTestListSinkWithError() *TestListSink {
	return &TestListSink{saved: map[string][]byte{}, err: errors.New("sink unavailable")}
}

func (t *TestListSink) Save(ctx context.Context, name string, data []byte) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saved[name] = append([]byte(nil), data...)
	return nil
}

// Saved returns the last data saved under name.
func (t *TestListSink) Saved(name string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.saved[name]
	return b, ok
}
