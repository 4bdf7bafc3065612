package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var markupRe = regexp.MustCompile(`<[a-zA-Z/!][^>]*>|&(?:[a-zA-Z]+|#[0-9]+|#x[0-9a-fA-F]+);`)

func CleanText(s string) string {
	s = StripMarkup(s)
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// StripMarkup returns the text content of s when it contains HTML tags or
// entities, and s unchanged otherwise.
func StripMarkup(s string) string {
	if !markupRe.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	// keep block boundaries as spaces
	doc.Find("br, p, div, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AfterHtml(" ")
	})
	return doc.Text()
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// tidyCase title-cases all-lowercase text and leaves deliberate casing
// ("SaaS", "E-commerce") alone.
func tidyCase(s string) string {
	if s == strings.ToLower(s) {
		return titleCase(s)
	}
	return s
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
