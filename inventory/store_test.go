package inventory

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Upsert(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Store)
		item  string
		amt   float64
		unit  string
		image string
		want  []Item
		ok    bool
	}{
		{
			name: "new entry",
			item: "flour", amt: 2, unit: "cups",
			want: []Item{{Name: "flour", Entry: Entry{Amount: 2, Unit: "cups"}}},
			ok:   true,
		},
		{
			name:  "sums existing entry",
			setup: func(s *Store) { s.Upsert("flour", 2, "cups", "") },
			item:  "flour", amt: 1.5, unit: "cups",
			want: []Item{{Name: "flour", Entry: Entry{Amount: 3.5, Unit: "cups"}}},
			ok:   true,
		},
		{
			name:  "mismatched unit is overwritten while amount is summed",
			setup: func(s *Store) { s.Upsert("milk", 2, "l", "") },
			item:  "milk", amt: 1, unit: "cups",
			want: []Item{{Name: "milk", Entry: Entry{Amount: 3, Unit: "cups"}}},
			ok:   true,
		},
		{
			name:  "keeps image when none given",
			setup: func(s *Store) { s.Upsert("egg", 2, "unit", "egg.png") },
			item:  "egg", amt: 1, unit: "unit",
			want: []Item{{Name: "egg", Entry: Entry{Amount: 3, Unit: "unit", Image: "egg.png"}}},
			ok:   true,
		},
		{
			name: "zero amount is never stored",
			item: "salt", amt: 0, unit: "g",
			want: []Item{},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if tt.setup != nil {
				tt.setup(s)
			}
			_, ok := s.Upsert(tt.item, tt.amt, tt.unit, tt.image)
			assert.Equal(t, tt.ok, ok)
			if diff := cmp.Diff(tt.want, s.Snapshot()); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_Decrement(t *testing.T) {
	s := NewStore()
	s.Upsert("egg", 6, "unit", "")

	unit, ok := s.Decrement("egg", 4)
	require.True(t, ok)
	assert.Equal(t, "unit", unit)
	e, ok := s.Get("egg")
	require.True(t, ok)
	assert.Equal(t, 2.0, e.Amount)

	unit, ok = s.Decrement("egg", 5)
	require.True(t, ok)
	assert.Equal(t, "unit", unit)
	_, ok = s.Get("egg")
	assert.False(t, ok, "entry should be deleted once it reaches zero")

	_, ok = s.Decrement("egg", 1)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestStore_DecimalResidueIsEmpty(t *testing.T) {
	s := NewStore()
	a, b := 0.1, 0.2
	s.Upsert("milk", a, "l", "")
	s.Upsert("milk", b, "l", "")

	_, ok := s.Decrement("milk", 0.3)
	require.True(t, ok)
	_, ok = s.Get("milk")
	assert.False(t, ok, "residue below Epsilon should delete the entry")

	s.Upsert("milk", a+b, "l", "")
	_, ok = s.Upsert("milk", -0.3, "l", "")
	assert.False(t, ok)
	assert.Zero(t, s.Len())

	_, ok = s.Upsert("salt", Epsilon/2, "g", "")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestStore_RemoveAbsentIsNoOp(t *testing.T) {
	s := NewStore()
	s.Upsert("rice", 1, "kg", "")
	before := s.Snapshot()

	assert.False(t, s.Remove("pasta"))
	assert.Equal(t, before, s.Snapshot())

	assert.True(t, s.Remove("rice"))
	assert.False(t, s.Remove("rice"))
	assert.Empty(t, s.Snapshot())
}

func TestStore_SnapshotOrder(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"c", "a", "b"} {
		s.Upsert(name, 1, "unit", "")
	}
	s.Remove("a")
	s.Upsert("a", 1, "unit", "")
	s.Upsert("c", 1, "unit", "")

	var names []string
	for _, it := range s.Snapshot() {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Upsert("a", 1, "unit", "")
	s.Upsert("b", 1, "unit", "")
	s.Clear()
	assert.Zero(t, s.Len())
	s.Upsert("a", 1, "unit", "")
	assert.Equal(t, 1, s.Len())
}

// Random add/decrement sequences never leave a non-positive entry behind.
func TestStore_NonNegativeInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	names := []string{"flour", "milk", "egg", "salt"}
	s := NewStore()

	for i := 0; i < 5000; i++ {
		name := names[r.Intn(len(names))]
		amount := float64(r.Intn(500)) / 100
		switch r.Intn(3) {
		case 0:
			s.Upsert(name, amount, "unit", "")
		case 1:
			s.Decrement(name, amount)
		case 2:
			if r.Intn(4) == 0 {
				s.Remove(name)
			}
		}
		for _, it := range s.Snapshot() {
			require.Greater(t, it.Amount, Epsilon, "step %d left %q at %v", i, it.Name, it.Amount)
		}
	}
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Upsert("rice", 1, "kg", "")
		}()
	}
	wg.Wait()

	e, ok := s.Get("rice")
	require.True(t, ok)
	assert.Equal(t, 50.0, e.Amount)
}
