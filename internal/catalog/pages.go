package catalog

// Page is one of the fixed, non-node pages of the site.
type Page struct {
	Key   string
	path  [2]string
	title [2]string
}

func (p Page) Path(l Locale) string {
	return p.path[l]
}

func (p Page) Title(l Locale) string {
	return p.title[l]
}

var (
	FrontPage = Page{
		Key:   "front",
		path:  [2]string{EN: "/", ES: "/es"},
		title: [2]string{EN: "Home", ES: "Inicio"},
	}
	ArticleListing = Page{
		Key:   "articles",
		path:  [2]string{EN: "/en/articles/", ES: "/es/articles/"},
		title: [2]string{EN: "Articles", ES: "Artículos"},
	}
	RecipeListing = Page{
		Key:   "recipes",
		path:  [2]string{EN: "/en/recipes/", ES: "/es/recipes/"},
		title: [2]string{EN: "Recipes", ES: "Recetas"},
	}
	ContactForm = Page{
		Key:   "contact",
		path:  [2]string{EN: "/en/contact/feedback", ES: "/es/contact/feedback"},
		title: [2]string{EN: "Website feedback", ES: "Comentarios sobre el sitio web"},
	}
)

// Listing returns the listing page of a content type. Only articles and recipes have one.
func Listing(ct ContentType) (Page, bool) {
	switch ct {
	case Article:
		return ArticleListing, true
	case Recipe:
		return RecipeListing, true
	}
	return Page{}, false
}
