package page

import (
	"strings"
	"umami-loadtest/internal/catalog"
)

type Outcome int

const (
	Accepted Outcome = iota
	Throttled
)

func (o Outcome) String() string {
	if o == Throttled {
		return "throttled"
	}
	return "accepted"
}

// flood control messages drupal renders once a visitor exceeds the contact form limit
var throttlePhrases = map[catalog.Locale]string{
	catalog.EN: "You cannot send more than 5 messages",
	catalog.ES: "No le está permitido enviar más de 5 mensajes",
}

func ThrottlePhrase(l catalog.Locale) string {
	return throttlePhrases[l]
}

// ClassifySubmission looks at the page returned after posting a form. It takes no locale: a page
// carrying the flood control message of any locale is Throttled, so a spanish form answered with
// the english message still counts. Anything else is Accepted.
func ClassifySubmission(html string) Outcome {
	for _, l := range catalog.Locales {
		if strings.Contains(html, throttlePhrases[l]) {
			return Throttled
		}
	}
	return Accepted
}
