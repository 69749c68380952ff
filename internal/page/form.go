package page

import (
	"fmt"
	"regexp"
)

// FormValue returns the value of the first form element named `name`, written either as
// name="x" value="v" or name="x" value='v'. This is how the site's hidden anti-replay fields
// (form_build_id) are rendered.
func FormValue(html, name string) (string, bool) {
	re := regexp.MustCompile(fmt.Sprintf(`name="%s" value=['"](.*?)['"]`, regexp.QuoteMeta(name)))
	groups := re.FindStringSubmatch(html)
	if len(groups) < 2 {
		return "", false
	}
	return groups[1], true
}
