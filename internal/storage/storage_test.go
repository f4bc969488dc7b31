package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "bob@example.com", NormalizeEmail("  Bob@Example.COM "))
}

func TestSanitizeEmail(t *testing.T) {
	cases := map[string]string{
		"bob@example.com":       "bob_example.com",
		" Bob@Example.com ":     "bob_example.com",
		"a+tag@x.io":            "a_tag_x.io",
		"../../etc/passwd":      ".._.._etc_passwd",
		"under_score-dash@d.dk": "under_score-dash_d.dk",
		"":                      "",
		"ü@x.com":               "ü_x.com",
		"_@x.com":               "__x.com",
		"Jørgen@Æblé.dk":        "jørgen_æblé.dk",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeEmail(in), "input %q", in)
	}
}
