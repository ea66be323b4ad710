// Package phone converts raw phone strings into the shapes gateway providers expect.
//
// All functions are pure and total: any input yields a digit string, possibly empty.
// An empty result means the input held no usable number.
package phone

import "strings"

// CountryCode is the international prefix used for local numbers.
const CountryCode = "62"

// StripNonDigits drops every rune that is not an ASCII digit.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToInternational returns the number with the country code prefix:
// 0812… and 812… become 62812…; 62… is returned unchanged.
func ToInternational(s string) string {
	d := StripNonDigits(s)
	switch {
	case d == "":
		return ""
	case strings.HasPrefix(d, CountryCode):
		return d
	case strings.HasPrefix(d, "0"):
		return CountryCode + d[1:]
	case strings.HasPrefix(d, "8"):
		return CountryCode + d
	default:
		return d
	}
}

// ToLocal returns the number without country code or trunk prefix:
// 62812… and 0812… both become 812….
func ToLocal(s string) string {
	d := StripNonDigits(s)
	for {
		switch {
		case strings.HasPrefix(d, CountryCode):
			d = d[len(CountryCode):]
		case strings.HasPrefix(d, "0"):
			d = d[1:]
		default:
			return d
		}
	}
}
