// ABOUTME: HTML to markdown conversion for documentation pages.
// ABOUTME: Extracts the main article content and renders a compact markdown form.

package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// htmlToMarkdown converts a raw documentation page to markdown. The main
// article content is isolated with readability first so navigation chrome,
// sidebars, and footers do not leak into the output. If extraction fails
// the full document is converted instead.
func htmlToMarkdown(rawHTML string, pageURL string) (string, error) {
	content := rawHTML

	if u, err := url.Parse(pageURL); err == nil {
		article, err := readability.FromReader(strings.NewReader(rawHTML), u)
		if err == nil && strings.TrimSpace(article.Content) != "" {
			content = article.Content
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parsing page content: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer").Remove()

	var b strings.Builder
	root := doc.Selection
	if body := doc.Find("body"); body.Length() > 0 {
		root = body
	}
	root.Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			renderNode(&b, n)
		}
	})

	return collapseBlankLines(strings.TrimSpace(b.String())), nil
}

// renderNode appends the markdown form of n and its children to b.
func renderNode(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(collapseSpace(n.Data))
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(b, n)
		b.WriteString("\n\n")
	case "p", "div", "section", "article":
		b.WriteString("\n\n")
		renderChildren(b, n)
		b.WriteString("\n\n")
	case "br":
		b.WriteString("\n")
	case "ul", "ol":
		b.WriteString("\n")
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				i++
				if n.Data == "ol" {
					fmt.Fprintf(b, "%d. ", i)
				} else {
					b.WriteString("- ")
				}
				renderChildren(b, c)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	case "pre":
		b.WriteString("\n\n```\n")
		b.WriteString(strings.TrimSpace(textContent(n)))
		b.WriteString("\n```\n\n")
	case "code":
		b.WriteString("`" + textContent(n) + "`")
	case "a":
		var href string
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				href = attr.Val
				break
			}
		}
		text := collapseSpace(textContent(n))
		if href != "" && text != "" {
			fmt.Fprintf(b, "[%s](%s)", text, href)
		} else {
			b.WriteString(text)
		}
	case "strong", "b":
		b.WriteString("**")
		renderChildren(b, n)
		b.WriteString("**")
	case "em", "i":
		b.WriteString("*")
		renderChildren(b, n)
		b.WriteString("*")
	case "tr":
		renderChildren(b, n)
		b.WriteString("\n")
	case "td", "th":
		renderChildren(b, n)
		b.WriteString(" | ")
	case "img":
		// Images carry no useful text for an agent; skip them.
	default:
		renderChildren(b, n)
	}
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

// textContent returns the concatenated text of n's subtree.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSpace folds runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseBlankLines reduces runs of blank lines to a single blank line.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// paginate returns the [startIndex, startIndex+maxLength) window of content
// prefixed with the source URL. When content remains past the window a
// truncation notice names the next start_index to request.
func paginate(content, pageURL string, maxLength, startIndex int) string {
	runes := []rune(content)
	total := len(runes)

	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= total {
		return fmt.Sprintf("AWS Documentation from %s:\n\n<e>No more content available. The documentation has %d characters in total.</e>", pageURL, total)
	}

	end := total
	if maxLength > 0 && startIndex+maxLength < total {
		end = startIndex + maxLength
	}

	result := fmt.Sprintf("AWS Documentation from %s:\n\n%s", pageURL, string(runes[startIndex:end]))
	if end < total {
		result += fmt.Sprintf("\n\n<e>Content truncated. Call the read_documentation tool with start_index=%d to get more content.</e>", end)
	}
	return result
}
