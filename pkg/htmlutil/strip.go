package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements end a line of text when they close.
var blockElements = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
}

// skippedElements have content that is never readable text.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// StripTags removes all markup from a string and normalizes whitespace.
// Block-level elements and <br> become line breaks so paragraph structure
// survives; entities are decoded by the tokenizer.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	skipping := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return normalize(b.String())
		case html.TextToken:
			if skipping == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Br:
				b.WriteByte('\n')
			case skippedElements[a] && tt == html.StartTagToken:
				skipping++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case skippedElements[a]:
				if skipping > 0 {
					skipping--
				}
			case blockElements[a]:
				b.WriteByte('\n')
			}
		}
	}
}

// normalize collapses runs of whitespace within each line and drops empty
// lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
