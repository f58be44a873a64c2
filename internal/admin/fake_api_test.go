package admin

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"CatalogAdmin/internal/catalog"
)

var errBoom = errors.New("boom")

// fakeAPI records calls and serves a configurable collection.
type fakeAPI struct {
	mu sync.Mutex

	products []catalog.Product
	nextID   int64

	listErr, createErr, updateErr, deleteErr, uploadErr error

	calls    []string
	uploaded []string
}

func newFakeAPI(ps ...catalog.Product) *fakeAPI {
	f := &fakeAPI{products: slices.Clone(ps), nextID: 1}
	for _, p := range ps {
		f.nextID = max(f.nextID, p.ID+1)
	}
	return f
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) ListProducts(context.Context) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.products), nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, in catalog.Fields) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.createErr != nil {
		return catalog.Product{}, f.createErr
	}
	p := in.WithID(f.nextID)
	f.nextID++
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	if f.updateErr != nil {
		return catalog.Product{}, f.updateErr
	}
	i := slices.IndexFunc(f.products, func(q catalog.Product) bool { return q.ID == p.ID })
	if i < 0 {
		return catalog.Product{}, &StatusError{Code: 404, Message: "product not found"}
	}
	f.products[i] = p
	return p, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.products = slices.DeleteFunc(f.products, func(p catalog.Product) bool { return p.ID == id })
	return nil
}

func (f *fakeAPI) UploadImage(_ context.Context, name string, body io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("upload")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	raw, _ := io.ReadAll(body)
	f.uploaded = append(f.uploaded, string(raw))
	return "http://cdn.test/uploads/" + name, nil
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}
