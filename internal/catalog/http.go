package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"CatalogAdmin/pkg/kit"
)

const maxBodyBytes = 4 << 20

// Server serves the product API. A nil Uploads leaves the upload routes
// unregistered.
type Server struct {
	Store         Store
	Uploads       *Uploader
	UploadLimiter *kit.IPRateLimiter
	Log           *zap.Logger

	metrics *domainMetrics
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.list)
			r.Post("/", s.create)
			r.Get("/{id}", s.get)
			r.Put("/{id}", s.update)
			r.Delete("/{id}", s.delete)
		})
		if s.Uploads != nil {
			r.With(s.UploadLimiter.Middleware).Post("/upload", s.upload)
		}
	})

	if s.Uploads != nil {
		r.Handle(uploadURLPrefix+"*", s.Uploads.Files())
	}

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if products == nil {
		products = []Product{}
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w, r)
		return
	}

	p, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.logger().Error("get product failed", zap.Error(err), zap.Int64("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		writeNotFound(w, r)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	f, err := DecodeFields(r.Body)
	if err != nil {
		writeBadBody(w, r, err)
		return
	}

	p, err := s.Store.Create(r.Context(), f)
	if err != nil {
		s.logger().Error("create product failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

// update replaces the whole record; the id always comes from the path.
func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	f, err := DecodeFields(r.Body)
	if err != nil {
		writeBadBody(w, r, err)
		return
	}

	p, found, err := s.Store.Update(r.Context(), id, f)
	if err != nil {
		s.logger().Error("update product failed", zap.Error(err), zap.Int64("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		writeNotFound(w, r)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

// delete always answers 204: an id that matches nothing, or is not even a
// number, has nothing left to remove.
func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r); ok {
		if err := s.Store.Delete(r.Context(), id); err != nil {
			s.logger().Error("delete product failed", zap.Error(err), zap.Int64("id", id))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadResp struct {
	ImageURL string `json:"imageUrl"`
}

// upload accepts any content type and size; parts beyond the in-memory
// threshold spill to temporary files that are removed afterwards.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(uploadField)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	if err != nil {
		s.metrics.upload(uploadRejected)
		http.Error(w, "No file uploaded.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name, err := s.Uploads.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, errBadFilename) {
			s.metrics.upload(uploadRejected)
			http.Error(w, "No file uploaded.", http.StatusBadRequest)
			return
		}
		s.metrics.upload(uploadFailed)
		s.logger().Error("store upload failed", zap.Error(err), zap.String("filename", header.Filename))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	s.metrics.upload(uploadOK)

	u := url.URL{
		Scheme: requestScheme(r),
		Host:   r.Host,
		Path:   uploadURLPrefix + name,
	}
	kit.WriteJSON(w, http.StatusOK, uploadResp{ImageURL: u.String()})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	kit.WriteError(w, r, http.StatusNotFound, "product not found", nil)
}

func writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	var missing *MissingFieldsError
	if errors.As(err, &missing) {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{"missing": missing.Fields})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
