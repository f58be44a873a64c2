package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

var ErrInvalidStatus = errors.New(`status must be "active" or "archived"`)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidStatus, v)
	}
	return s, nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Product is one catalog record. Description holds HTML markup and Image a
// URL, possibly empty.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Status      Status  `json:"status"`
}

// Fields is a Product without its identity, as accepted by Create and Update.
type Fields struct {
	Name        string
	Description string
	Image       string
	Price       float64
	Status      Status
}

func (f Fields) WithID(id int64) Product {
	return Product{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Image:       f.Image,
		Price:       f.Price,
		Status:      f.Status,
	}
}

func (p Product) Fields() Fields {
	return Fields{
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		Status:      p.Status,
	}
}

var ErrMissingField = errors.New("missing field")

// fieldsReq mirrors the wire body with pointers so absent keys can be told
// apart from zero values. id is tolerated and ignored.
type fieldsReq struct {
	ID          *json.Number `json:"id"`
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Image       *string      `json:"image"`
	Price       *float64     `json:"price"`
	Status      *Status      `json:"status"`
}

// DecodeFields strictly parses a create/update body: unknown keys, trailing
// data, missing fields and unknown statuses are all rejected.
func DecodeFields(r io.Reader) (Fields, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req fieldsReq
	if err := dec.Decode(&req); err != nil {
		return Fields{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Fields{}, errors.New("extra data after json object")
	}

	var missing []string
	if req.Name == nil {
		missing = append(missing, "name")
	}
	if req.Description == nil {
		missing = append(missing, "description")
	}
	if req.Image == nil {
		missing = append(missing, "image")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if req.Status == nil {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return Fields{}, &MissingFieldsError{Fields: missing}
	}

	return Fields{
		Name:        *req.Name,
		Description: *req.Description,
		Image:       *req.Image,
		Price:       *req.Price,
		Status:      *req.Status,
	}, nil
}

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingField }
