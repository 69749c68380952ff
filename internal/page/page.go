// Package page holds the narrow matchers run against raw page html: title validation, static
// asset discovery, hidden form field scraping and form submission classification.
//
// None of these parse html. They match the markup conventions of the Umami theme with a few
// regular expressions, and are expected to miss anything those conventions do not cover
// (srcset, lazy-loaded images, assets referenced from css).
package page

import (
	"bytes"
	"errors"
	"strings"
	"umami-loadtest/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const titleOpen = "<title>"

// ValidTitle reports whether the page's <title> starts with the expected title. The comparison
// is on raw bytes: the expected title must be written with the same entities and spacing as the
// markup, ex. `Let&#039;s hear it for carrots`.
func ValidTitle(html, expected string) bool {
	return strings.Contains(html, titleOpen+expected)
}

var ErrNoTitle = errors.New("page has no title")

// Title returns the rendered text of the first <title> element. It is only used to describe a
// validation failure, ValidTitle never depends on it.
func Title(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return "", err
	}
	title := doc.Find("title").First()
	if len(title.Nodes) == 0 {
		return "", ErrNoTitle
	}
	return htmlutil.Clean(htmlutil.GetText(title.Nodes[0])), nil
}
