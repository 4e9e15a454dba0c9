package sanitizer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy is returned by LoadPolicy for unreadable policy documents.
var ErrInvalidPolicy = errors.New("invalid sanitizer policy")

// Policy describes what survives sanitization.
type Policy struct {
	// Tags maps an allowed element to the attributes it may carry.
	Tags map[string][]string `yaml:"tags"`
	// URLAttributes are checked against Schemes.
	URLAttributes []string `yaml:"url_attributes"`
	// Schemes lists allowed URL schemes. Relative URLs are always allowed.
	Schemes []string `yaml:"schemes"`
	// DropContent lists elements removed together with everything inside them.
	// script and style are always dropped.
	DropContent []string `yaml:"drop_content"`
}

// DefaultPolicy allows common formatting, links, images and tables.
func DefaultPolicy() Policy {
	return Policy{
		Tags: map[string][]string{
			"p": nil, "br": nil, "hr": nil, "div": nil, "span": nil,
			"b": nil, "strong": nil, "i": nil, "em": nil, "u": nil, "s": nil,
			"del": nil, "ins": nil, "mark": nil, "small": nil, "sub": nil, "sup": nil,
			"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
			"ul": nil, "ol": {"start", "reversed"}, "li": nil,
			"blockquote": {"cite"}, "code": nil, "pre": nil,
			"a":          {"href", "title", "target", "rel"},
			"img":        {"src", "alt", "title", "width", "height"},
			"figure":     nil, "figcaption": nil,
			"table": nil, "caption": nil, "thead": nil, "tbody": nil, "tfoot": nil, "tr": nil,
			"th": {"colspan", "rowspan", "scope"},
			"td": {"colspan", "rowspan"},
		},
		URLAttributes: []string{"href", "src", "cite"},
		Schemes:       []string{"http", "https", "mailto"},
		DropContent:   []string{"script", "style"},
	}
}

// LoadPolicy reads a YAML policy. A field left out of the document keeps its
// DefaultPolicy value.
//
//	tags:
//	  p: []
//	  a: [href, target]
//	schemes: [https]
func LoadPolicy(r io.Reader) (Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, errors.Join(ErrInvalidPolicy, err)
	}

	d := DefaultPolicy()
	if p.Tags == nil {
		p.Tags = d.Tags
	}
	if p.URLAttributes == nil {
		p.URLAttributes = d.URLAttributes
	}
	if p.Schemes == nil {
		p.Schemes = d.Schemes
	}
	if p.DropContent == nil {
		p.DropContent = d.DropContent
	}

	for tag := range p.Tags {
		if strings.TrimSpace(tag) == "" {
			return Policy{}, fmt.Errorf("%w: empty tag name", ErrInvalidPolicy)
		}
	}
	for _, s := range p.Schemes {
		if s == "" || strings.ContainsAny(s, ":/ ") {
			return Policy{}, fmt.Errorf("%w: bad scheme %q", ErrInvalidPolicy, s)
		}
	}
	return p, nil
}
