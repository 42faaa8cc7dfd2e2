package hn

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CommentMarkdown converts the host's comment HTML into Markdown for the
// terminal renderer. The host only emits <p>, <i>, <a>, <pre><code> and
// plain text, so anything else is flattened to its text.
func CommentMarkdown(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(body), ctx)
	if err != nil {
		return body
	}
	var b strings.Builder
	for _, n := range nodes {
		writeMarkdown(&b, n)
	}
	return strings.TrimSpace(collapseBlankLines(b.String()))
}

func writeMarkdown(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(escapeMarkdown(n.Data))
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeMarkdown(b, c)
		}
		return
	}

	switch n.DataAtom {
	case atom.P:
		b.WriteString("\n\n")
		children(b, n)
	case atom.Br:
		b.WriteString("  \n")
	case atom.I, atom.Em:
		inner := innerMarkdown(n)
		if strings.TrimSpace(inner) != "" {
			b.WriteString("*" + strings.TrimSpace(inner) + "*")
		}
	case atom.B, atom.Strong:
		inner := innerMarkdown(n)
		if strings.TrimSpace(inner) != "" {
			b.WriteString("**" + strings.TrimSpace(inner) + "**")
		}
	case atom.A:
		href := attr(n, "href")
		label := strings.TrimSpace(text(n))
		// The host truncates long link labels with "...".
		if label == "" || strings.HasSuffix(label, "...") {
			label = href
		}
		if href == "" {
			b.WriteString(escapeMarkdown(label))
			return
		}
		b.WriteString("[" + escapeMarkdown(label) + "](" + href + ")")
	case atom.Pre:
		code := strings.TrimRight(text(n), "\n")
		b.WriteString("\n\n```\n" + code + "\n```\n\n")
	case atom.Code:
		b.WriteString("`" + text(n) + "`")
	default:
		children(b, n)
	}
}

func children(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeMarkdown(b, c)
	}
}

func innerMarkdown(n *html.Node) string {
	var b strings.Builder
	children(&b, n)
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
