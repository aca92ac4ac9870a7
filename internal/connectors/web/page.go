package web

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// page is the parsed content of a single crawled URL.
type page struct {
	Title string
	Text  string
	Links []string
}

// Elements whose text is never user-visible content. Header and
// footer chrome is skipped so navigation menus don't pollute the
// index.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"nav":      true,
}

// parsePage extracts the title, visible text and outbound links from
// an HTML document. Relative links are resolved against base.
func parsePage(r io.Reader, base *url.URL) (*page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &page{}
	var words []string
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "title" && p.Title == "" {
				p.Title = strings.TrimSpace(textContent(n))
			}
			if n.Data == "a" {
				if link, ok := resolveLink(n, base); ok && !seen[link] {
					seen[link] = true
					p.Links = append(p.Links, link)
				}
			}
		}
		if n.Type == html.TextNode && !inHead(n) {
			words = append(words, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	p.Text = strings.Join(words, " ")
	return p, nil
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// inHead reports whether the node sits under a <head> element, whose
// text (title, meta) is not page content.
func inHead(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "head" {
			return true
		}
	}
	return false
}

// resolveLink extracts an href from an anchor node and resolves it
// against base, dropping fragments. Returns false for anchors without
// a usable href.
func resolveLink(n *html.Node, base *url.URL) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		ref, err := base.Parse(strings.TrimSpace(attr.Val))
		if err != nil {
			return "", false
		}
		ref.Fragment = ""
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return "", false
		}
		return ref.String(), true
	}
	return "", false
}

// sameHost reports whether the candidate URL stays on the crawl's
// host: an exact match or a subdomain of it.
func sameHost(host string, candidate *url.URL) bool {
	h := candidate.Hostname()
	return h == host || strings.HasSuffix(h, "."+host)
}
