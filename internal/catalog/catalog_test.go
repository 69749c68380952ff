package catalog

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEveryNodeHasEveryLocale(t *testing.T) {
	for _, n := range All() {
		for _, l := range Locales {
			require.NotEmpty(t, n.URL(l), "node %d has no %s url", n.ID, l)
			require.NotEmpty(t, n.Title(l), "node %d has no %s title", n.ID, l)
			require.True(t, strings.HasPrefix(n.URL(l), "/"+l.String()+"/"), "node %d url %s", n.ID, n.URL(l))
		}
	}
}

func TestNodeIdsAreUnique(t *testing.T) {
	seen := map[int]ContentType{}
	for _, n := range All() {
		other, exists := seen[n.ID]
		require.False(t, exists, "node %d is both %s and %s", n.ID, other, n.Type)
		seen[n.ID] = n.Type
	}
	require.Len(t, seen, 18)
}

func TestPartition(t *testing.T) {
	require.Len(t, Nodes(Article), 8)
	require.Len(t, Nodes(BasicPage), 1)
	require.Len(t, Nodes(Recipe), 9)

	for _, ct := range ContentTypes {
		for _, n := range Nodes(ct) {
			require.Equal(t, ct, n.Type)
		}
	}
}

func TestTitlesKeepEntities(t *testing.T) {
	var carrots Node
	for _, n := range Nodes(Article) {
		if n.ID == 14 {
			carrots = n
		}
	}
	require.Equal(t, "Let&#039;s hear it for carrots", carrots.Title(EN))
}

func TestIDPath(t *testing.T) {
	require.Equal(t, "/node/18", Nodes(BasicPage)[0].IDPath())
}

func TestRandomNodeStaysInPartition(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		n := RandomNode(rnd, Recipe)
		require.Equal(t, Recipe, n.Type)
		seen[n.ID] = true
	}
	// every recipe shows up given enough draws
	require.Len(t, seen, len(Nodes(Recipe)))
}

func TestRandomAnyNodePicksTypeFirst(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	counts := map[ContentType]int{}
	const draws = 3000
	for i := 0; i < draws; i++ {
		counts[RandomAnyNode(rnd).Type]++
	}
	// the single basic page is drawn about a third of the time
	require.InDelta(t, draws/3, counts[BasicPage], draws*0.05)
}

func TestLocale(t *testing.T) {
	l, err := ParseLocale(" ES ")
	require.NoError(t, err)
	require.Equal(t, ES, l)

	_, err = ParseLocale("fr")
	require.Error(t, err)
}

func TestFixedPages(t *testing.T) {
	require.Equal(t, "/", FrontPage.Path(EN))
	require.Equal(t, "Inicio", FrontPage.Title(ES))

	listing, ok := Listing(Recipe)
	require.True(t, ok)
	require.Equal(t, "/es/recipes/", listing.Path(ES))
	require.Equal(t, "Recetas", listing.Title(ES))

	_, ok = Listing(BasicPage)
	require.False(t, ok)
}
