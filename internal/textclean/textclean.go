// Package textclean reduces user-submitted dream text to plain text.
package textclean

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxLength bounds stored dream text in bytes
const MaxLength = 10 * 1024

// Tags whose content is never dream text
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"iframe": true, "object": true, "template": true,
}

// Elements that end a line
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "section": true, "article": true,
}

// Elements stripped as markup. Any other <...> is kept as literal text.
var markupTags = map[string]bool{
	"html": true, "head": true, "body": true, "title": true, "meta": true, "link": true,
	"span": true, "a": true, "b": true, "i": true, "u": true, "s": true,
	"em": true, "strong": true, "small": true, "mark": true, "code": true,
	"sub": true, "sup": true, "strike": true, "font": true, "hr": true, "img": true,
	"ul": true, "ol": true, "table": true, "thead": true, "tbody": true, "td": true, "th": true,
}

func isMarkup(tag string) bool {
	return markupTags[tag] || blockTags[tag] || skipTags[tag]
}

// PlainText strips HTML markup from s, keeping text content and line
// breaks. Text that only looks like markup, such as "x<y" or "<ran>", is
// kept as written. Input without markup is only trimmed.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return truncate(strings.TrimSpace(s))
	}

	var sb strings.Builder
	var skipping string
	sawMarkup := false
	consumed := 0

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// An unterminated "<..." at the end is dropped by the tokenizer
			if errors.Is(z.Err(), io.EOF) && consumed < len(s) && skipping == "" {
				sb.WriteString(s[consumed:])
			}
			break
		}
		raw := z.Raw()
		consumed += len(raw)

		switch tt {
		case html.TextToken:
			if skipping == "" {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !isMarkup(tag) {
				if skipping == "" {
					sb.Write(raw)
				}
				continue
			}
			sawMarkup = true
			switch {
			case skipTags[tag] && tt == html.StartTagToken:
				skipping = tag
			case tag == skipping && tt == html.EndTagToken:
				skipping = ""
			case skipping == "" && blockTags[tag] && (tt == html.EndTagToken || tag == "br"):
				sb.WriteString("\n")
			}
		case html.CommentToken, html.DoctypeToken:
			sawMarkup = true
		}
	}

	if !sawMarkup {
		return truncate(strings.TrimSpace(sb.String()))
	}
	return truncate(tidyLines(sb.String()))
}

// tidyLines collapses runs of spaces inside lines and drops blank lines
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	cut := MaxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
