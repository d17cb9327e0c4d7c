package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`

	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]interface{})

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, _ := json.Marshal(Alias(*p))
	_ = json.Unmarshal(stdJSON, &data)

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// NewError creates a generic Problem
func NewError(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank", // Default as per RFC
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value interface{}) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// WithType sets the RFC "type" URI
func WithType(uri string) ProblemOption {
	return func(p *Problem) {
		p.Type = uri
	}
}

// ValidationError creates a rich validation error
func ValidationError(validationErrors map[string]string) *Problem {
	return NewError(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithExtension("errors", validationErrors),
	)
}

// BadRequestError creates a standard error for a bad request
func BadRequestError(detail string, opts ...ProblemOption) *Problem {
	return NewError(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// NotFoundError creates a standard 404 error
func NotFoundError(detail string, opts ...ProblemOption) *Problem {
	return NewError(http.StatusNotFound, "Not Found", detail, opts...)
}

// ProviderError creates a 502 gateway error for upstream provider failures
func ProviderError(detail string, err error) *Problem {
	return NewError(http.StatusBadGateway, "Upstream Provider Error", detail, WithLog(err))
}
