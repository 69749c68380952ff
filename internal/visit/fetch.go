package visit

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrNoResponse is wrapped by a Fetcher when the server could not be reached or did not answer.
	ErrNoResponse = errors.New("no response from server")
	// ErrDecode is wrapped by a Fetcher when a response arrived but its body could not be read as text.
	ErrDecode = errors.New("failed to parse page")
)

// Page is a fetched response with its body decoded to text.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       string
}

type Field struct {
	Name  string
	Value string
}

// Form is a urlencoded form submission. Fields are sent in the order they are listed.
type Form struct {
	Path   string
	Fields []Field
}

// Encode urlencodes the fields without reordering them, which url.Values would do.
func (f Form) Encode() string {
	var sb strings.Builder
	for i, field := range f.Fields {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(field.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(field.Value))
	}
	return sb.String()
}

// Fetcher is the http transport a visit runs on. `name` groups requests for statistics, many
// different paths can share the same name (ex. every asset is a "static asset").
//
// Any error returned must wrap ErrNoResponse or ErrDecode. A non-2xx status is not an error.
type Fetcher interface {
	Get(ctx context.Context, path, name string) (Page, error)
	Post(ctx context.Context, form Form, name string) (Page, error)
}
