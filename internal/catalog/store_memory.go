package catalog

import (
	"context"
	"sync"
)

// MemStore keeps products in insertion order. Every method holds the lock
// for the whole operation; there is no versioning, so concurrent updates of
// the same id resolve last-writer-wins.
type MemStore struct {
	mu     sync.RWMutex
	items  []Product
	nextID int64
}

// NewStore returns the process store seeded with the two demo products.
func NewStore() *MemStore {
	return NewMemStore([]Product{
		{
			ID:          1,
			Name:        "Tent No. 1",
			Description: "<p>A classic two-person trekking tent for short stays. Quick to pitch, compact and light.</p>",
			Image:       "https://cdnkz.sportmaster.com/upload/mdm/media_content/resize/677/768_1024_e504/120759050299.jpg",
			Price:       20000,
			Status:      StatusActive,
		},
		{
			ID:          2,
			Name:        "Northland Camino backpack, 60 l",
			Description: "<p>A light, roomy backpack, a good pick for trekking.\n</p>",
			Image:       "https://cdnkz.sportmaster.com/upload/mdm/media_content/resize/50b/768_1024_b7e7/114924870299.jpg",
			Price:       25000,
			Status:      StatusArchived,
		},
	})
}

// NewMemStore copies seed and continues numbering after its highest id.
func NewMemStore(seed []Product) *MemStore {
	s := &MemStore{
		items:  make([]Product, len(seed)),
		nextID: 1,
	}
	copy(s.items, seed)
	for _, p := range seed {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true, nil
	}
	return Product{}, false, nil
}

func (s *MemStore) Create(ctx context.Context, f Fields) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := f.WithID(s.nextID)
	s.nextID++
	s.items = append(s.items, p)
	return p, nil
}

func (s *MemStore) Update(ctx context.Context, id int64, f Fields) (Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false, nil
	}
	s.items[i] = f.WithID(id)
	return s.items[i], true, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, p := range s.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	clear(s.items[len(kept):])
	s.items = kept
	return nil
}

func (s *MemStore) indexOf(id int64) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}
