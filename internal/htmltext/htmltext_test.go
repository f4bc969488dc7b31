package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  just   some\ntext ", "just some text"},
		{"empty", "", ""},
		{"tags", "<p>Hello <b>world</b></p><p>Again</p>", "Hello world Again"},
		{"script dropped", "<div>Keep<script>alert(1)</script><style>p{}</style></div>", "Keep"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"line breaks", "one<br>two", "one two"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PlainText(tc.in))
		})
	}
}

func TestParagraphs(t *testing.T) {
	html := `<article><p>short</p><p>This paragraph is long enough.</p><p>  Another   long paragraph here. </p></article>`

	got := Paragraphs(html, 10)
	assert.Equal(t, []string{"This paragraph is long enough.", "Another long paragraph here."}, got)
}
