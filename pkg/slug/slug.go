package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures Make.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	lowercase bool
}

func defaultConfig() *config {
	return &config{
		separator: "-",
		lowercase: true,
	}
}

// MaxLength truncates the slug to n runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator sets the string placed between words. Default is "-".
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// Lowercase controls lower-casing of the output. Default is true.
func Lowercase(enabled bool) Option {
	return func(c *config) {
		c.lowercase = enabled
	}
}

// transliterations covers letters that NFKD does not decompose into ASCII.
var transliterations = map[rune]string{
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ħ': "h", 'Ħ': "H",
	'ı': "i",
	'ß': "ss",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'þ': "th", 'Þ': "TH",
}

// Fold strips diacritics: NFKD decomposition followed by removal of combining marks.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Make converts s into a slug.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s = Fold(s)

	var b strings.Builder
	b.Grow(len(s))

	sepLen := len([]rune(cfg.separator))
	count := 0
	pendingSep := false

	write := func(r rune) bool {
		if pendingSep && count > 0 {
			if cfg.maxLength > 0 && count+sepLen >= cfg.maxLength {
				return false
			}
			b.WriteString(cfg.separator)
			count += sepLen
		}
		pendingSep = false
		if cfg.maxLength > 0 && count >= cfg.maxLength {
			return false
		}
		if cfg.lowercase {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
		count++
		return true
	}

loop:
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if !write(r) {
				break loop
			}
		case transliterations[r] != "":
			for _, tr := range transliterations[r] {
				if !write(tr) {
					break loop
				}
			}
		default:
			pendingSep = true
		}
	}

	return b.String()
}
