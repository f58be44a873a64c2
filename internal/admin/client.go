package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"CatalogAdmin/internal/catalog"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4 << 10
)

var ErrUnavailable = errors.New("catalog api unavailable")

// StatusError is a non-2xx answer from the catalog API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api: status=%d", e.Code)
	}
	return fmt.Sprintf("catalog api: status=%d: %s", e.Code, e.Message)
}

// API is the slice of the catalog HTTP surface the views depend on.
type API interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, f catalog.Fields) (catalog.Product, error)
	UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, filename string, body io.Reader) (string, error)
}

// Client talks to the catalog service. Every call is attempted exactly once.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

type productBody struct {
	ID          int64          `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Price       float64        `json:"price"`
	Status      catalog.Status `json:"status"`
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, "", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, f catalog.Fields) (catalog.Product, error) {
	body, err := json.Marshal(productBody{
		Name:        f.Name,
		Description: f.Description,
		Image:       f.Image,
		Price:       f.Price,
		Status:      f.Status,
	})
	if err != nil {
		return catalog.Product{}, err
	}

	var out catalog.Product
	err = c.do(ctx, http.MethodPost, "/api/products", bytes.NewReader(body), "application/json", http.StatusCreated, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	body, err := json.Marshal(productBody(p))
	if err != nil {
		return catalog.Product{}, err
	}

	var out catalog.Product
	err = c.do(ctx, http.MethodPut, productPath(p.ID), bytes.NewReader(body), "application/json", http.StatusOK, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, "", http.StatusNoContent, nil)
}

// UploadImage sends body as the multipart "image" field and returns the URL
// the server stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, body); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType(), http.StatusOK, &out); err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", errors.New("upload response without imageUrl")
	}
	return out.ImageURL, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts {"message"} from JSON error bodies and falls back to
// the raw text the upload endpoint sends.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(raw))
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}
