package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Smith Law Group", want: "smith-law-group"},
		{name: "punctuation runs", in: "Baker, McKenzie & Partners LLP", want: "baker-mckenzie-and-partners-llp"},
		{name: "accents", in: "Peña Álvarez Abogados", want: "pena-alvarez-abogados"},
		{name: "apostrophe", in: "O'Brien’s Firm", want: "obriens-firm"},
		{name: "special letters", in: "Straße Søren", want: "strasse-soren"},
		{name: "trim edges", in: "  --Personal Injury--  ", want: "personal-injury"},
		{name: "digits", in: "Top 10 Firms 2026", want: "top-10-firms-2026"},
		{name: "empty", in: "   ", want: ""},
		{name: "only symbols", in: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeTruncates(t *testing.T) {
	out := Make(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(out), maxLength)
	assert.False(t, strings.HasSuffix(out, "-"))
	assert.True(t, Valid(out))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("family-law"))
	assert.True(t, Valid("a1"))
	assert.False(t, Valid("Family-Law"))
	assert.False(t, Valid("family--law"))
	assert.False(t, Valid("-family"))
	assert.False(t, Valid(""))
}

func TestPick(t *testing.T) {
	assert.Equal(t, "custom-slug", Pick(" Custom Slug ", "Ignored Name"))
	assert.Equal(t, "ignored-name", Pick("  ", "Ignored Name"))
}
