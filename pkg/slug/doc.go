// Package slug turns arbitrary strings into lower-case ASCII tokens safe for
// storage keys and URLs.
//
// Input is decomposed with Unicode NFKD and combining marks are removed, so
// "Café Crème" becomes "cafe-creme". Letters without a decomposition (ø, ł, ß,
// æ, œ) use a small transliteration table. Every other run of characters
// collapses into a single separator.
//
//	slug.Make("Summer Sale – Ärmel & Kragen.JPG")
//	// "summer-sale-armel-kragen-jpg"
//
//	slug.Make("Very long product name", slug.MaxLength(8))
//	// "very-lon"
//
// Options: MaxLength (counts runes), Separator (default "-"), Lowercase
// (default true). All functions are safe for concurrent use.
package slug
