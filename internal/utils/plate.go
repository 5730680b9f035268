package utils

import "strings"

// NormalizePlate reduces a plate to its lookup key: ASCII letters and digits
// only, upper-cased. "30G-460.44" and "30g 46044" share the key "30G46044".
func NormalizePlate(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPlate renders a plate in the CSGT display form: 30G46044 -> 30G-460.44,
// 51F123456 -> 51F-123.456. Keys shorter than 8 characters are returned
// normalized but otherwise untouched.
func FormatPlate(plate string) string {
	clean := NormalizePlate(plate)
	if len(clean) < 8 {
		return clean
	}
	return clean[:3] + "-" + clean[3:6] + "." + clean[6:]
}

// SamePlate reports whether two raw inputs identify the same vehicle.
func SamePlate(a, b string) bool {
	return NormalizePlate(a) == NormalizePlate(b)
}
