package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div>Give it <b>a go</b> and <i>grow</i></div>`))
	require.NoError(t, err)
	require.Equal(t, "Give it a go and grow", GetText(doc))
}

func TestClean(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "  Home | Umami  ", expected: "Home | Umami"},
		{input: "\n\tRecipes\n", expected: "Recipes"},
		{input: "Watercress   soup", expected: "Watercress soup"},
		{input: "Crema\u0007 catalana", expected: "Crema catalana"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Clean(test.input))
	}
}
