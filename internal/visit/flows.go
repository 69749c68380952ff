package visit

import (
	"context"
	"fmt"
	"strconv"
	"umami-loadtest/internal/catalog"
	"umami-loadtest/internal/page"

	"github.com/mazen160/go-random"
)

// Flow is one simulated visitor action. It returns nil on success or a *Failure.
type Flow func(ctx context.Context, s *Session) error

const (
	report_front_page   = "visit.front-page"
	report_listing      = "visit.listing"
	report_random_node  = "visit.random-node"
	report_basic_page   = "visit.basic-page"
	report_node_by_id   = "visit.node-by-id"
	report_contact_form = "visit.contact-form"
)

// FrontPage loads the home page of a locale and its assets.
func FrontPage(l catalog.Locale) Flow {
	return fixedPage(report_front_page, catalog.FrontPage, l)
}

// Listing loads the listing page of a content type, only articles and recipes have one.
func Listing(l catalog.Locale, ct catalog.ContentType) Flow {
	listing, ok := catalog.Listing(ct)
	if !ok {
		panic(fmt.Sprintf("content type %s has no listing page", ct))
	}
	return fixedPage(report_listing, listing, l)
}

func fixedPage(reportId string, p catalog.Page, l catalog.Locale) Flow {
	return func(ctx context.Context, s *Session) error {
		res, err := s.get(ctx, reportId, p.Path(l), p.Title(l))
		if err != nil {
			return err
		}
		s.loadAssets(ctx, res.Body)
		return nil
	}
}

// RandomNode loads a node of the given type picked uniformly at random, addressed by its alias.
func RandomNode(l catalog.Locale, ct catalog.ContentType) Flow {
	return func(ctx context.Context, s *Session) error {
		node := catalog.RandomNode(s.rand, ct)
		res, err := s.get(ctx, report_random_node, node.URL(l), node.Title(l))
		if err != nil {
			return err
		}
		s.loadAssets(ctx, res.Body)
		return nil
	}
}

// BasicPage loads the basic page of a locale.
func BasicPage(l catalog.Locale) Flow {
	return func(ctx context.Context, s *Session) error {
		node := catalog.RandomNode(s.rand, catalog.BasicPage)
		res, err := s.get(ctx, report_basic_page, node.URL(l), node.Title(l))
		if err != nil {
			return err
		}
		s.loadAssets(ctx, res.Body)
		return nil
	}
}

// NodeByID loads any node through /node/<id> instead of its alias. The content type is picked
// first, then a node of that type, so the single basic page is visited as often as all recipes
// together. The site answers /node/<id> in english.
func NodeByID() Flow {
	return func(ctx context.Context, s *Session) error {
		node := catalog.RandomAnyNode(s.rand)
		res, err := s.get(ctx, report_node_by_id, node.IDPath(), node.Title(catalog.EN))
		if err != nil {
			return err
		}
		s.loadAssets(ctx, res.Body)
		return nil
	}
}

const (
	contactFormId       = "contact_message_feedback_form"
	contactTokenField   = "form_build_id"
	contactMessageChars = 12
)

var contactSubmitLabel = map[catalog.Locale]string{
	catalog.EN: "Send message",
	catalog.ES: "Enviar mensaje",
}

// ContactForm loads the feedback form, replays its build id in a submission and loads the
// assets of the page the site answers with. A throttled submission is still a successful visit.
func ContactForm(l catalog.Locale) Flow {
	return func(ctx context.Context, s *Session) error {
		res, err := s.get(ctx, report_contact_form, catalog.ContactForm.Path(l), catalog.ContactForm.Title(l))
		if err != nil {
			return err
		}
		s.loadAssets(ctx, res.Body)

		token, ok := page.FormValue(res.Body, contactTokenField)
		if !ok {
			return s.broken(report_contact_form, &Failure{
				Kind:   MissingToken,
				URL:    res.URL,
				Reason: fmt.Sprintf("%s: %s not found", res.URL, contactTokenField),
				Err:    ErrMissingToken,
				Header: res.Header,
				Body:   res.Body,
			})
		}

		form := Form{
			Path: catalog.ContactForm.Path(l),
			Fields: []Field{
				{Name: "name", Value: "Umami load test"},
				{Name: "mail", Value: "loadtest@example.com"},
				{Name: "subject[0][value]", Value: "Load test"},
				{Name: "message[0][value]", Value: "Synthetic feedback " + s.randomSuffix()},
				{Name: contactTokenField, Value: token},
				{Name: "form_id", Value: contactFormId},
				{Name: "op", Value: contactSubmitLabel[l]},
			},
		}

		submitted, err := s.fetcher.Post(ctx, form, requestName(ctx, form.Path))
		if err != nil {
			return s.broken(report_contact_form, fetchFailure(urlOf(submitted, form.Path), submitted, err))
		}

		outcome := page.ClassifySubmission(submitted.Body)
		if outcome == page.Throttled {
			s.tel.ReportInfo(report_contact_form, "submission throttled", "url", submitted.URL)
		}
		s.loadAssets(ctx, submitted.Body)
		return nil
	}
}

func (s *Session) randomSuffix() string {
	suffix, err := random.String(contactMessageChars)
	if err != nil {
		return strconv.FormatInt(s.rand.Int63(), 36)
	}
	return suffix
}
