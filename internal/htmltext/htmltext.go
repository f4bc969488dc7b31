// Package htmltext flattens HTML fragments from news sources into plain text.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors end a line of text when flattened.
const blockSelectors = "p, br, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr"

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
// Input without markup is returned with whitespace collapsed; unparsable input is returned as is.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	// Remove junk
	doc.Find("script, style, noscript, iframe").Remove()

	doc.Find(blockSelectors).Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return collapse(doc.Text())
}

// Paragraphs returns the trimmed text of each <p> in the fragment longer than minLen.
func Paragraphs(fragment string, minLen int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var paragraphs []string
	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := collapse(s.Text())
		if text != "" && len(text) > minLen {
			paragraphs = append(paragraphs, text)
		}
	})
	return paragraphs
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
