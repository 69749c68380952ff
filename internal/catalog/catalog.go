// Package catalog is the fixed content of the Umami demo site: every node the load test visits,
// with its url and title per locale, and the fixed pages (front page, listings, contact form).
//
// Everything here is built once at package init and never mutated, so it is safe to read from
// any number of goroutines.
package catalog

import (
	"fmt"
	"math/rand"
	"strings"
)

type Locale int

const (
	EN Locale = iota
	ES
)

// Locales lists every supported locale.
var Locales = []Locale{EN, ES}

func (l Locale) String() string {
	switch l {
	case EN:
		return "en"
	case ES:
		return "es"
	}
	return fmt.Sprintf("Locale(%d)", int(l))
}

// ParseLocale accepts the two letter code of a locale, case-insensitively.
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en":
		return EN, nil
	case "es":
		return ES, nil
	}
	return 0, fmt.Errorf("unknown locale %q", s)
}

type ContentType int

const (
	Article ContentType = iota
	BasicPage
	Recipe
)

// ContentTypes lists every content type, in the order the catalog partitions them.
var ContentTypes = []ContentType{Article, BasicPage, Recipe}

func (c ContentType) String() string {
	switch c {
	case Article:
		return "article"
	case BasicPage:
		return "basic_page"
	case Recipe:
		return "recipe"
	}
	return fmt.Sprintf("ContentType(%d)", int(c))
}

// Node is a single piece of content. Titles are stored exactly as the site renders them inside
// <title>, including html entities.
type Node struct {
	ID    int
	Type  ContentType
	url   [2]string
	title [2]string
}

func (n Node) URL(l Locale) string {
	return n.url[l]
}

func (n Node) Title(l Locale) string {
	return n.title[l]
}

// IDPath is the path that addresses the node by id instead of by its alias.
func (n Node) IDPath() string {
	return fmt.Sprintf("/node/%d", n.ID)
}

func node(id int, ct ContentType, urlEn, urlEs, titleEn, titleEs string) Node {
	return Node{
		ID:    id,
		Type:  ct,
		url:   [2]string{EN: urlEn, ES: urlEs},
		title: [2]string{EN: titleEn, ES: titleEs},
	}
}

var nodes = map[ContentType][]Node{
	Article: {
		node(10, Article,
			"/en/articles/give-it-a-go-and-grow-your-own-herbs",
			"/es/articles/prueba-y-cultiva-tus-propias-hierbas",
			"Give it a go and grow your own herbs",
			"Prueba y cultiva tus propias hierbas",
		),
		node(11, Article,
			"/en/articles/dairy-free-and-delicious-milk-chocolate",
			"/es/articles/delicioso-chocolate-sin-lactosa",
			"Dairy-free and delicious milk chocolate",
			"Delicioso chocolate sin lactosa",
		),
		node(12, Article,
			"/en/articles/the-real-deal-for-supermarket-savvy-shopping",
			"/es/articles/el-verdadeo-negocio-para-comprar-en-el-supermercado",
			"The real deal for supermarket savvy shopping",
			"El verdadero negocio para comprar en el supermercado",
		),
		node(13, Article,
			"/en/articles/the-umami-guide-to-our-favourite-mushrooms",
			"/es/articles/guia-umami-de-nuestras-setas-preferidas",
			"The Umami guide to our favorite mushrooms",
			"Guía Umami de nuestras setas preferidas",
		),
		node(14, Article,
			"/en/articles/lets-hear-it-for-carrots",
			"/es/articles/un-aplauso-para-las-zanahorias",
			"Let&#039;s hear it for carrots",
			"Un aplauso para las zanahorias",
		),
		node(15, Article,
			"/en/articles/baking-mishaps-our-troubleshooting-tips",
			"/es/articles/percances-al-hornear-nuestros-consejos-para-solucionar-problemas",
			"Baking mishaps - our troubleshooting tips",
			"Percances al hornear - nuestros consejos para solucionar los problemas",
		),
		node(16, Article,
			"/en/articles/skip-the-spirits-with-delicious-mocktails",
			"/es/articles/salta-los-espiritus-con-deliciosos-cocteles-sin-alcohol",
			"Skip the spirits with delicious mocktails",
			"Salta los espíritus con deliciosos cócteles sin alcohol",
		),
		node(17, Article,
			"/en/articles/give-your-oatmeal-the-ultimate-makeover",
			"/es/articles/dale-a-tu-avena-el-cambio-de-imagen-definitivo",
			"Give your oatmeal the ultimate makeover",
			"Dale a tu avena el cambio de imagen definitivo",
		),
	},
	BasicPage: {
		node(18, BasicPage,
			"/en/about-umami",
			"/es/acerca-de-umami",
			"About Umami",
			"Acerca de Umami",
		),
	},
	Recipe: {
		node(1, Recipe,
			"/en/recipes/deep-mediterranean-quiche",
			"/es/recipes/quiche-mediterráneo-profundo",
			"Deep mediterranean quiche",
			"Quiche mediterráneo profundo",
		),
		node(2, Recipe,
			"/en/recipes/vegan-chocolate-and-nut-brownies",
			"/es/recipes/bizcochos-veganos-de-chocolate-y-nueces",
			"Vegan chocolate and nut brownies",
			"Bizcochos veganos de chocolate y nueces",
		),
		node(3, Recipe,
			"/en/recipes/super-easy-vegetarian-pasta-bake",
			"/es/recipes/pasta-vegetariana-horno-super-facil",
			"Super easy vegetarian pasta bake",
			"Pasta vegetariana al horno súper fácil",
		),
		node(4, Recipe,
			"/en/recipes/watercress-soup",
			"/es/recipes/sopa-de-berro",
			"Watercress soup",
			"Sopa de berro",
		),
		node(5, Recipe,
			"/en/recipes/victoria-sponge-cake",
			"/es/recipes/pastel-victoria",
			"Victoria sponge cake",
			"Pastel Victoria",
		),
		node(6, Recipe,
			"/en/recipes/gluten-free-pizza",
			"/es/recipes/pizza-sin-gluten",
			"Gluten free pizza",
			"Pizza sin gluten",
		),
		node(7, Recipe,
			"/en/recipes/thai-green-curry",
			"/es/recipes/curry-verde-tailandes",
			"Thai green curry",
			"Curry verde tailandés",
		),
		node(8, Recipe,
			"/en/recipes/crema-catalana",
			"/es/recipes/crema-catalana",
			"Crema catalana",
			"Crema catalana",
		),
		node(9, Recipe,
			"/en/recipes/fiery-chili-sauce",
			"/es/recipes/salsa-de-chile-ardiente",
			"Fiery chili sauce",
			"Salsa de chile ardiente",
		),
	},
}

// Nodes returns every node of a content type. The returned slice must not be modified.
func Nodes(ct ContentType) []Node {
	return nodes[ct]
}

// All returns every node of every content type, partitioned in ContentTypes order.
func All() []Node {
	var out []Node
	for _, ct := range ContentTypes {
		out = append(out, nodes[ct]...)
	}
	return out
}

// RandomNode picks a node of the given content type uniformly at random.
func RandomNode(rnd *rand.Rand, ct ContentType) Node {
	list := nodes[ct]
	return list[rnd.Intn(len(list))]
}

// RandomAnyNode picks a content type uniformly at random, then a node within it uniformly at
// random. Content types with fewer nodes are therefore over-represented compared to picking
// uniformly over All().
func RandomAnyNode(rnd *rand.Rand) Node {
	ct := ContentTypes[rnd.Intn(len(ContentTypes))]
	return RandomNode(rnd, ct)
}
