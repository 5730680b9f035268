package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"30G46044", "30G46044"},
		{"30G-460.44", "30G46044"},
		{" 30g 460 44 ", "30G46044"},
		{"11a-073.78", "11A07378"},
		{"", ""},
		{"---", ""},
		{"Đ29-B1", "29B1"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizePlate(tc.raw), "raw=%q", tc.raw)
	}
}

func TestNormalizePlateIdempotent(t *testing.T) {
	inputs := []string{"30G-460.44", "  ab c-12.3 ", "Đ29-B1 999.99", "", "x"}
	for _, in := range inputs {
		once := NormalizePlate(in)
		assert.Equal(t, once, NormalizePlate(once), "input=%q", in)
	}
}

func TestFormatPlate(t *testing.T) {
	assert.Equal(t, "30G-460.44", FormatPlate("30G46044"))
	assert.Equal(t, "11A-073.78", FormatPlate("11A07378"))
	assert.Equal(t, "51F-123.456", FormatPlate("51F123456"))
	assert.Equal(t, "29B-112.3456", FormatPlate("29B1123456"))
	assert.Equal(t, "ABC123", FormatPlate("abc-123"))
	assert.Equal(t, "", FormatPlate(""))
}

func TestFormatPreservesIdentity(t *testing.T) {
	inputs := []string{"30G46044", "11A07378", "30G-460.44", "51F123456", "abc", "29b1-123.45678", ""}
	for _, in := range inputs {
		key := NormalizePlate(in)
		assert.Equal(t, key, NormalizePlate(FormatPlate(key)), "input=%q", in)
	}
}

func TestFormatPlateIsStable(t *testing.T) {
	display := FormatPlate("30G46044")
	assert.Equal(t, display, FormatPlate(display))
}

func TestSamePlate(t *testing.T) {
	assert.True(t, SamePlate("30G-460.44", "30g46044"))
	assert.False(t, SamePlate("30G46044", "30G46045"))
}
