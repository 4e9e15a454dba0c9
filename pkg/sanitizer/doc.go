// Package sanitizer cleans untrusted rich text before it is stored and later
// rendered as raw HTML.
//
// The input is parsed leniently with golang.org/x/net/html as a fragment of
// <body>, so any string produces a tree and Sanitize never fails. The tree is
// then rebuilt under a Policy:
//
//   - elements missing from Policy.Tags are unwrapped: the element disappears,
//     its children stay in place;
//   - script and style, plus any element listed in Policy.DropContent, are
//     removed together with their content;
//   - the text of unwrapped raw-text elements such as iframe, noscript or
//     textarea is kept and escaped;
//   - attributes not listed for the element are removed, which removes every
//     on* handler;
//   - href and src values whose scheme is not allowed are removed entirely;
//     relative URLs are always allowed;
//   - <a target="_blank"> always gets rel="noopener noreferrer";
//   - comments and doctypes are removed.
//
// Policies are plain data and can be loaded from YAML:
//
//	p, err := sanitizer.LoadPolicy(f)
//	if err != nil {
//		return err
//	}
//	clean := sanitizer.NewHTML(p).Sanitize(raw)
//
// SanitizeHTML applies DefaultPolicy. An *HTML is immutable after NewHTML and
// safe for concurrent use.
package sanitizer
