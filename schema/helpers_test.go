package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbbreviateName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"popcorn", "popcorn"},
		{"Samuel Huang", "Samuel H"},
		{"First Second Third", "First T"},
		{"  Alice  ", "Alice"},
		{"John   Doe", "John D"},

		{"Ava (Billy) Cathy", "Ava C"},
		{"O'Neill John", "O'Neill J"},
		{"Anne-Marie Smith", "Anne-Marie S"},
		{"`backtickname", "backtickname"},
		{"*Security-Bot*", "Security-Bot"},
		{"[John Smith]", "John S"},
		{"O'Malley-Ryan, Sean", "O'Malley-Ryan S"},

		{"A. B. C.", "A C"},
		{"J. R. R. Tolkien", "J T"},
		{"Mr. Robert E. Lee", "Mr L"},

		{"jo@x.com", "jo@x.com"},
		{"dependabot[bot]", "dependabot[bot]"},
		{"github-actions [bot]", "github-actions [bot]"},

		{"张三", "张三"},
		{"राम कुमार", "राम क"},
		{"Hans Müller", "Hans M"},
		{"José María", "José M"},

		{"", ""},
		{"()", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AbbreviateName(tt.name))
		})
	}
}

func TestFormatOwners(t *testing.T) {
	owners := []string{"Samuel Huang", "Ava (Billy) Cathy", "dependabot[bot]"}
	assert.Equal(t, "Samuel H, Ava C, dependabot[bot]", FormatOwners(owners))
	assert.Equal(t, "", FormatOwners(nil))
	assert.Equal(t, "jo@x.com", FormatOwners(TopOwners(map[string]float64{"jo@x.com": 1}, 1)))
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"jo@x.com", true},
		{"Jo.Doe@Example.org", true},
		{"Jo Doe", false},
		{"@handle", false},
		{"jo@localhost", false},
		{"Jo <jo@x.com>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeEmail(tt.name))
		})
	}
}

func TestTopOwners(t *testing.T) {
	ownership := map[string]float64{
		"b@x.com": 0.25,
		"a@x.com": 0.25,
		"c@x.com": 0.5,
	}

	assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, TopOwners(ownership, -1))
	assert.Equal(t, []string{"c@x.com", "a@x.com"}, TopOwners(ownership, 2))
	assert.Empty(t, TopOwners(nil, 3))
}
