package sanitizer

import (
	"html"
	"strings"
	"unicode"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose children html.Render writes verbatim. They are never emitted;
// their text would bypass escaping.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "iframe": true, "noembed": true, "noframes": true,
	"noscript": true, "plaintext": true, "xmp": true, "textarea": true, "title": true,
}

const forcedRel = "noopener noreferrer"

type set map[string]struct{}

func newSet(items []string) set {
	s := make(set, len(items))
	for _, it := range items {
		s[strings.ToLower(strings.TrimSpace(it))] = struct{}{}
	}
	return s
}

func (s set) has(k string) bool {
	_, ok := s[k]
	return ok
}

// HTML sanitizes markup with a fixed policy.
type HTML struct {
	tags     map[string]set
	urlAttrs set
	schemes  set
	drop     set
}

// NewHTML compiles p into lookup tables. Later changes to p have no effect.
// script and style always drop their content.
func NewHTML(p Policy) *HTML {
	h := &HTML{
		tags:     make(map[string]set, len(p.Tags)),
		urlAttrs: newSet(p.URLAttributes),
		schemes:  newSet(p.Schemes),
		drop:     newSet(append([]string{"script", "style"}, p.DropContent...)),
	}
	for tag, attrs := range p.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if rawTextElements[tag] {
			continue
		}
		h.tags[tag] = newSet(attrs)
	}
	return h
}

var defaultHTML = NewHTML(DefaultPolicy())

// SanitizeHTML cleans raw with DefaultPolicy.
func SanitizeHTML(raw string) string {
	return defaultHTML.Sanitize(raw)
}

// Sanitize returns the policy-conforming rendering of raw. It never fails.
func (h *HTML) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	body := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := nethtml.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		return html.EscapeString(raw)
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, n := range nodes {
		for _, clean := range h.clean(n) {
			if err := nethtml.Render(&b, clean); err != nil {
				return html.EscapeString(raw)
			}
		}
	}
	return b.String()
}

// clean returns the detached replacement nodes for n.
func (h *HTML) clean(n *nethtml.Node) []*nethtml.Node {
	switch n.Type {
	case nethtml.TextNode:
		return []*nethtml.Node{{Type: nethtml.TextNode, Data: n.Data}}

	case nethtml.ElementNode:
		name := strings.ToLower(n.Data)
		if h.drop.has(name) {
			return nil
		}
		allowed, ok := h.tags[name]
		if !ok || n.Namespace != "" {
			return h.cleanChildren(n)
		}

		el := &nethtml.Node{
			Type:     nethtml.ElementNode,
			Data:     name,
			DataAtom: atom.Lookup([]byte(name)),
			Attr:     h.cleanAttrs(name, n.Attr, allowed),
		}
		for _, c := range h.cleanChildren(n) {
			el.AppendChild(c)
		}
		return []*nethtml.Node{el}

	case nethtml.DocumentNode:
		return h.cleanChildren(n)

	default:
		// comments, doctypes, raw nodes
		return nil
	}
}

func (h *HTML) cleanChildren(n *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, h.clean(c)...)
	}
	return out
}

func (h *HTML) cleanAttrs(tag string, attrs []nethtml.Attribute, allowed set) []nethtml.Attribute {
	out := make([]nethtml.Attribute, 0, len(attrs)+1)
	blankTarget := false
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" || !allowed.has(key) {
			continue
		}
		if h.urlAttrs.has(key) && !h.allowedURL(a.Val) {
			continue
		}
		if key == "target" && strings.EqualFold(strings.TrimSpace(a.Val), "_blank") {
			blankTarget = true
		}
		out = append(out, nethtml.Attribute{Key: key, Val: a.Val})
	}

	if tag != "a" || !blankTarget {
		return out
	}
	kept := out[:0]
	for _, a := range out {
		if a.Key != "rel" {
			kept = append(kept, a)
		}
	}
	return append(kept, nethtml.Attribute{Key: "rel", Val: forcedRel})
}

// allowedURL reports whether v is relative or uses an allowed scheme. The value
// is entity-decoded, stripped of whitespace and control characters and
// lower-cased first, as a browser would before resolving it.
func (h *HTML) allowedURL(v string) bool {
	v = html.UnescapeString(v)
	v = strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f || unicode.IsControl(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
	v = strings.ToLower(v)

	colon := strings.IndexByte(v, ':')
	if colon < 0 {
		return true
	}
	if i := strings.IndexAny(v, "/?#"); i >= 0 && i < colon {
		return true
	}
	return h.schemes.has(v[:colon])
}
