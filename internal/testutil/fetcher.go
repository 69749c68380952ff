package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"umami-loadtest/internal/catalog"
	"umami-loadtest/internal/visit"
)

// Call is a single request made to a FakeFetcher.
type Call struct {
	Method string
	Path   string
	Name   string
	Form   visit.Form
}

// Response is what a FakeFetcher answers for a path. A non-nil Err is returned together with
// Page, so a decode error can still carry headers.
type Response struct {
	Page visit.Page
	Err  error
}

// FakeFetcher is a scripted visit.Fetcher. Paths without a scripted response answer 200 with
// an empty body.
type FakeFetcher struct {
	Gets  map[string]Response
	Posts map[string]Response

	mu    sync.Mutex
	calls []Call
}

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		Gets:  make(map[string]Response),
		Posts: make(map[string]Response),
	}
}

// HTML scripts a GET of path to answer 200 with the given body.
func (f *FakeFetcher) HTML(path, body string) *FakeFetcher {
	f.Gets[path] = Response{Page: htmlPage(path, body)}
	return f
}

// PostHTML scripts a POST to path to answer 200 with the given body.
func (f *FakeFetcher) PostHTML(path, body string) *FakeFetcher {
	f.Posts[path] = Response{Page: htmlPage(path, body)}
	return f
}

func htmlPage(path, body string) visit.Page {
	return visit.Page{
		URL:        path,
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=UTF-8"}},
		Body:       body,
	}
}

func (f *FakeFetcher) record(call Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *FakeFetcher) Get(ctx context.Context, path, name string) (visit.Page, error) {
	f.record(Call{Method: http.MethodGet, Path: path, Name: name})
	res, ok := f.Gets[path]
	if !ok {
		return htmlPage(path, ""), nil
	}
	return res.Page, res.Err
}

func (f *FakeFetcher) Post(ctx context.Context, form visit.Form, name string) (visit.Page, error) {
	f.record(Call{Method: http.MethodPost, Path: form.Path, Name: name, Form: form})
	res, ok := f.Posts[form.Path]
	if !ok {
		return htmlPage(form.Path, ""), nil
	}
	return res.Page, res.Err
}

// Calls returns the requests made so far, in order.
func (f *FakeFetcher) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Paths returns the path of every request of the given method, or of every request if method
// is empty.
func (f *FakeFetcher) Paths(method string) []string {
	var paths []string
	for _, call := range f.Calls() {
		if method == "" || call.Method == method {
			paths = append(paths, call.Path)
		}
	}
	return paths
}

// FieldValue returns the value of the first field of form called name.
func FieldValue(form visit.Form, name string) (string, bool) {
	for _, field := range form.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// UmamiPage renders a minimal page of the site with a title and one asset of each kind.
func UmamiPage(title string) string {
	return "<html><head><title>" + title + " | Umami Food Magazine</title>" +
		`<link rel="stylesheet" href="/sites/default/files/css/css_umami.css" />` +
		`</head><body><img src="/core/themes/umami/logo.svg" /></body></html>`
}

// NewUmamiFetcher answers every page of the catalog with its expected title, by alias in every
// locale and by id in english, and accepts contact form submissions.
func NewUmamiFetcher() *FakeFetcher {
	f := NewFakeFetcher()
	for _, l := range catalog.Locales {
		for _, p := range []catalog.Page{catalog.FrontPage, catalog.ArticleListing, catalog.RecipeListing} {
			f.HTML(p.Path(l), UmamiPage(p.Title(l)))
		}
		contact := strings.Replace(
			UmamiPage(catalog.ContactForm.Title(l)),
			"</body>",
			`<input type="hidden" name="form_build_id" value="form-umami" /></body>`,
			1,
		)
		f.HTML(catalog.ContactForm.Path(l), contact)
		f.PostHTML(catalog.ContactForm.Path(l), UmamiPage(catalog.ContactForm.Title(l)))

		for _, node := range catalog.All() {
			f.HTML(node.URL(l), UmamiPage(node.Title(l)))
		}
	}
	for _, node := range catalog.All() {
		f.HTML(node.IDPath(), UmamiPage(node.Title(catalog.EN)))
	}
	return f
}
