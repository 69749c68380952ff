package visit

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// Transport means the request got no response.
	Transport Kind = iota
	// Decode means the response body could not be read.
	Decode
	// Validation means the page did not have the expected title.
	Validation
	// MissingToken means a form page did not carry its hidden build id.
	MissingToken
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Decode:
		return "decode"
	case Validation:
		return "validation"
	case MissingToken:
		return "missing_token"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	ErrTitleNotFound = errors.New("title not found")
	ErrMissingToken  = errors.New("form token not found")
)

// Failure is a hard failure of a single visit. Header and Body are kept when a response was
// received so the failure can be logged with what the server actually sent.
type Failure struct {
	Kind   Kind
	URL    string
	Reason string
	Err    error
	Header http.Header
	Body   string
}

func (f *Failure) Error() string {
	return f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// fetchFailure classifies an error returned by a Fetcher, which already names the sentinel it
// wraps. A decode failure keeps the headers of the response that could not be read.
func fetchFailure(url string, res Page, err error) *Failure {
	if errors.Is(err, ErrDecode) {
		return &Failure{
			Kind:   Decode,
			URL:    url,
			Reason: fmt.Sprintf("%s: %v", url, err),
			Err:    err,
			Header: res.Header,
		}
	}
	return &Failure{
		Kind:   Transport,
		URL:    url,
		Reason: fmt.Sprintf("%s: %v", url, err),
		Err:    err,
	}
}
