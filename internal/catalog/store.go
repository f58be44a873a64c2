package catalog

import "context"

// Store is the authoritative product collection. Ids are assigned by Create,
// strictly increase and are never reused.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Create(ctx context.Context, f Fields) (Product, error)
	// Update replaces every field of the record with the given id. The
	// boolean is false when no such record exists.
	Update(ctx context.Context, id int64, f Fields) (Product, bool, error)
	// Delete removes any record with the given id; deleting an absent id is
	// not an error.
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
