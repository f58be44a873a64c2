package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"CatalogAdmin/internal/catalog"
)

var (
	ErrValidation = errors.New("name and price are required")
	ErrUpload     = errors.New("failed to upload image, try again")
	ErrCreate     = errors.New("failed to create product, try again")
	ErrUpdate     = errors.New("failed to update product, try again")
	ErrDelete     = errors.New("failed to delete product, try again")
	ErrNotFound   = errors.New("product not found")
)

// FormError is the single message a view shows for a failed submit. Kind is
// one of the sentinels above; Err is the underlying cause, if any.
type FormError struct {
	Kind error
	Err  error
}

func (e *FormError) Error() string {
	return e.Kind.Error()
}

func (e *FormError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ImageFile is a picked local file that still has to be uploaded.
type ImageFile struct {
	Name string
	Body io.Reader
}

// Form is the create/edit input. Price zero means "not entered"; NaN and
// infinities are rejected like a missing price.
type Form struct {
	Name        string
	Description string
	ImageURL    string
	Upload      *ImageFile
	Price       float64
	Status      catalog.Status
}

func (f Form) Validate() error {
	if f.Name == "" || !(f.Price > 0) || math.IsInf(f.Price, 0) {
		return ErrValidation
	}
	return nil
}

func formFromProduct(p catalog.Product) Form {
	return Form{
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.Image,
		Price:       p.Price,
		Status:      p.Status,
	}
}

// App is the client-side application state handed to every view.
type App struct {
	API   API
	Cache *Cache
	Log   *zap.Logger
}

func NewApp(api API, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{API: api, Cache: NewCache(api), Log: log}
}

// List refreshes the cache and renders v over it. A failed refresh still
// renders the previous list with the error flag set.
func (a *App) List(ctx context.Context, v ListView) ListPage {
	if err := a.Cache.FetchAll(ctx); err != nil {
		a.Log.Warn("fetch products failed", zap.Error(err))
	}
	return v.Render(a.Cache.State())
}

func (a *App) Delete(ctx context.Context, id int64) error {
	if err := a.Cache.Delete(ctx, id); err != nil {
		a.Log.Error("delete product failed", zap.Error(err), zap.Int64("id", id))
		return &FormError{Kind: ErrDelete, Err: err}
	}
	return nil
}

// Create validates f, uploads the picked image if any, creates the product
// and resynchronizes the cache with a full fetch. An image uploaded before a
// failed create stays on the server.
func (a *App) Create(ctx context.Context, f Form) (catalog.Product, error) {
	if err := f.Validate(); err != nil {
		return catalog.Product{}, &FormError{Kind: ErrValidation}
	}
	if f.Status == "" {
		f.Status = catalog.StatusActive
	}

	image, err := a.uploadImage(ctx, f)
	if err != nil {
		return catalog.Product{}, err
	}

	created, err := a.API.CreateProduct(ctx, catalog.Fields{
		Name:        f.Name,
		Description: f.Description,
		Image:       image,
		Price:       f.Price,
		Status:      f.Status,
	})
	if err != nil {
		a.Log.Error("create product failed", zap.Error(err))
		return catalog.Product{}, &FormError{Kind: ErrCreate, Err: err}
	}

	if err := a.Cache.FetchAll(ctx); err != nil {
		a.Log.Warn("refresh after create failed", zap.Error(err))
	}
	return created, nil
}

// LoadEdit returns the form prefilled from the cached product, fetching the
// collection first when the product is not cached yet.
func (a *App) LoadEdit(ctx context.Context, id int64) (Form, error) {
	if p, ok := a.Cache.Find(id); ok {
		return formFromProduct(p), nil
	}
	if err := a.Cache.FetchAll(ctx); err != nil {
		return Form{}, fmt.Errorf("load product %d: %w", id, err)
	}
	p, ok := a.Cache.Find(id)
	if !ok {
		return Form{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return formFromProduct(p), nil
}

// Edit validates f, uploads a newly picked image if any, and writes the full
// record through the cache.
func (a *App) Edit(ctx context.Context, id int64, f Form) (catalog.Product, error) {
	if err := f.Validate(); err != nil {
		return catalog.Product{}, &FormError{Kind: ErrValidation}
	}
	if f.Status == "" {
		f.Status = catalog.StatusActive
	}

	image, err := a.uploadImage(ctx, f)
	if err != nil {
		return catalog.Product{}, err
	}

	saved, err := a.Cache.Update(ctx, catalog.Fields{
		Name:        f.Name,
		Description: f.Description,
		Image:       image,
		Price:       f.Price,
		Status:      f.Status,
	}.WithID(id))
	if err != nil {
		a.Log.Error("update product failed", zap.Error(err), zap.Int64("id", id))
		return catalog.Product{}, &FormError{Kind: ErrUpdate, Err: err}
	}
	return saved, nil
}

func (a *App) uploadImage(ctx context.Context, f Form) (string, error) {
	if f.Upload == nil {
		return f.ImageURL, nil
	}
	u, err := a.API.UploadImage(ctx, f.Upload.Name, f.Upload.Body)
	if err != nil {
		a.Log.Error("upload image failed", zap.Error(err), zap.String("filename", f.Upload.Name))
		return "", &FormError{Kind: ErrUpload, Err: err}
	}
	return u, nil
}
