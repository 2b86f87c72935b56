package intake

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/rangetable"
)

const (
	maxEmailLength     = 320
	maxLocalPartLength = 64
	maxDomainLength    = 255

	maxReferralSourceLength = 255
)

// emailFormatRegexp is an RFC-5322-flavored structural pattern: a local part
// of permitted characters, exactly one @, dot-separated domain labels of
// alphanumerics and hyphens with no leading or trailing hyphen per label.
var emailFormatRegexp = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$",
)

// controlCharsRegexp matches ASCII control characters plus zero-width and
// line-separator Unicode characters that never appear in a legitimate
// address.
var controlCharsRegexp = regexp.MustCompile(
	`[\x00-\x1f\x7f\x{200B}-\x{200F}\x{2028}-\x{202F}\x{FEFF}]`,
)

// tagRegexp matches HTML/script tag-shaped substrings stripped from free
// text inputs.
var tagRegexp = regexp.MustCompile(`<[^>]*>`)

// confusableTable covers Unicode blocks whose characters visually impersonate
// ASCII: Latin-1 supplement through IPA extensions, Latin extended
// additional, Cyrillic and its supplement, Latin extended-C and -D. An
// address containing any of them is treated as a homograph attempt.
var confusableTable = rangetable.Merge(
	&unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0080, Hi: 0x00FF, Stride: 1}, // Latin-1 supplement
		{Lo: 0x0100, Hi: 0x017F, Stride: 1}, // Latin extended-A
		{Lo: 0x0180, Hi: 0x024F, Stride: 1}, // Latin extended-B
		{Lo: 0x0250, Hi: 0x02AF, Stride: 1}, // IPA extensions
	}},
	&unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0400, Hi: 0x04FF, Stride: 1}, // Cyrillic
		{Lo: 0x0500, Hi: 0x052F, Stride: 1}, // Cyrillic supplement
	}},
	&unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x1E00, Hi: 0x1EFF, Stride: 1}, // Latin extended additional
		{Lo: 0x2C60, Hi: 0x2C7F, Stride: 1}, // Latin extended-C
		{Lo: 0xA720, Hi: 0xA7FF, Stride: 1}, // Latin extended-D
	}},
)

func containsControlCharacters(s string) bool {
	return controlCharsRegexp.MatchString(s)
}

func containsSuspiciousUnicode(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return unicode.Is(confusableTable, r)
	})
}

func validEmailFormat(email string) bool {
	return emailFormatRegexp.MatchString(email)
}

func validEmailLength(email string) bool {
	if len(email) > maxEmailLength {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	return len(local) <= maxLocalPartLength && len(domain) <= maxDomainLength
}

// CanonicalEmail collapses Gmail dot and plus-address variants to one
// comparable form: dots are stripped from the local part, everything from
// the first + on is discarded, and googlemail.com is rewritten to gmail.com.
// Non-Gmail addresses are returned unchanged. The canonical form is a
// duplicate-detection aid only; the literal lowercased address is what gets
// stored.
func CanonicalEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if domain != "gmail.com" && domain != "googlemail.com" {
		return email
	}
	local = strings.ReplaceAll(local, ".", "")
	if i := strings.IndexByte(local, '+'); i != -1 {
		local = local[:i]
	}
	return local + "@gmail.com"
}

// sanitizeFreeText strips control characters and tag-shaped substrings,
// trims, and caps the result at maxReferralSourceLength.
func sanitizeFreeText(s string) string {
	s = controlCharsRegexp.ReplaceAllString(s, "")
	s = tagRegexp.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) > maxReferralSourceLength {
		cut := maxReferralSourceLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
