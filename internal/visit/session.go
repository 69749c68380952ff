package visit

import (
	"context"
	"fmt"
	"math/rand"
	"umami-loadtest/internal/components/assert"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/page"

	"github.com/antzucaro/matchr"
)

const assetRequestName = "static asset"

// Session is the state of one virtual visitor. It is not safe for concurrent use, every
// visitor owns its own.
type Session struct {
	fetcher Fetcher
	rand    *rand.Rand
	tel     telemetry.API
}

func NewSession(fetcher Fetcher, rnd *rand.Rand, tel telemetry.API) *Session {
	assert.NotNil(fetcher)
	assert.NotNil(rnd)
	assert.NotNil(tel)
	return &Session{
		fetcher: fetcher,
		rand:    rnd,
		tel:     tel,
	}
}

type taskNameKey struct{}

// WithTaskName names the page requests made with ctx after the task that issues them, so
// statistics group "/en/recipes/watercress-soup" and "/en/recipes/pizza-sin-gluten" together.
// Without a task name, requests are named after their path.
func WithTaskName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, taskNameKey{}, name)
}

func requestName(ctx context.Context, path string) string {
	name, ok := ctx.Value(taskNameKey{}).(string)
	if !ok || name == "" {
		return path
	}
	return name
}

// get fetches a page and checks its title.
func (s *Session) get(ctx context.Context, reportId, path, title string) (Page, error) {
	res, err := s.fetcher.Get(ctx, path, requestName(ctx, path))
	if err != nil {
		return Page{}, s.broken(reportId, fetchFailure(urlOf(res, path), res, err))
	}
	if err := s.validate(reportId, res, title); err != nil {
		return Page{}, err
	}
	return res, nil
}

func (s *Session) validate(reportId string, res Page, title string) error {
	if page.ValidTitle(res.Body, title) {
		return nil
	}

	failure := &Failure{
		Kind:   Validation,
		URL:    res.URL,
		Reason: fmt.Sprintf("%s: title not found: %s", res.URL, title),
		Err:    ErrTitleNotFound,
		Header: res.Header,
		Body:   res.Body,
	}

	actual, err := page.Title(res.Body)
	if err != nil {
		s.tel.ReportBroken(
			reportId, failure,
			"status", res.StatusCode,
			"expected", title,
			"actual", err.Error(),
		)
		return failure
	}
	s.tel.ReportBroken(
		reportId, failure,
		"status", res.StatusCode,
		"expected", title,
		"actual", actual,
		"similarity", matchr.JaroWinkler(title, actual, false),
	)
	return failure
}

func (s *Session) broken(reportId string, failure *Failure) error {
	s.tel.ReportBroken(reportId, failure)
	return failure
}

// loadAssets fetches every static asset a page references. Failures are not reported, they do
// not affect the outcome of a visit.
func (s *Session) loadAssets(ctx context.Context, html string) {
	for _, asset := range page.Assets(html) {
		_, err := s.fetcher.Get(ctx, asset, assetRequestName)
		if err != nil {
			s.tel.ReportDebug("static asset failed", "path", asset, "err", err)
		}
	}
}

func urlOf(res Page, path string) string {
	if res.URL != "" {
		return res.URL
	}
	return path
}
