package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\n' {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims a rendered text fragment down to something comparable:
// non-printables dropped, runs of inner whitespace collapsed.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// CellText returns the trimmed text of a selection, preserving line breaks
// between block children (goquery's .Text() flattens them away, which loses
// the key/value lines rendered in table cells).
func CellText(sel *goquery.Selection) string {
	var lines []string
	for _, node := range sel.Nodes {
		collectLines(node, &lines)
	}
	return strings.Trim(strings.Join(lines, "\n"), " \t\n")
}

var blockTags = map[string]bool{
	"div": true, "p": true, "li": true, "br": true, "tr": true,
}

func hasBlockChild(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && blockTags[child.Data] {
			return true
		}
	}
	return false
}

func collectLines(node *html.Node, lines *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.ElementNode && blockTags[node.Data] {
		if node.Data == "br" {
			return
		}
		// a wrapper block gets recursed into so each nested block still
		// lands on its own line
		if hasBlockChild(node) {
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				collectLines(child, lines)
			}
			return
		}
		var buffer bytes.Buffer
		getTextRecursive(node, &buffer)
		text := strings.Trim(buffer.String(), " \t\n")
		if text != "" {
			*lines = append(*lines, text)
		}
		return
	}
	if node.Type == html.TextNode {
		text := strings.Trim(node.Data, " \t\n")
		if text != "" {
			*lines = append(*lines, text)
		}
		return
	}
	child := node.FirstChild
	for child != nil {
		collectLines(child, lines)
		child = child.NextSibling
	}
}
