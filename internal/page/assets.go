package page

import (
	"regexp"
	"strings"
)

var (
	// one attribute value per match, never spanning to the quote of a later tag
	srcAttr = regexp.MustCompile(`src="(.*?)"`)
	cssHref = regexp.MustCompile(`href="(/sites/default/files/css/.*?)"`)
)

// local theme and module asset directories
var localAssetPrefixes = []string{"/sites", "/core"}

func isLocalAsset(path string) bool {
	for _, prefix := range localAssetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Assets returns the paths of the static assets a page references: every local src="..." in
// document order, followed by every aggregated stylesheet href="/sites/default/files/css/...".
// Paths that appear more than once are returned more than once.
func Assets(html string) []string {
	var assets []string
	for _, match := range srcAttr.FindAllStringSubmatch(html, -1) {
		if isLocalAsset(match[1]) {
			assets = append(assets, match[1])
		}
	}
	for _, match := range cssHref.FindAllStringSubmatch(html, -1) {
		assets = append(assets, match[1])
	}
	return assets
}
