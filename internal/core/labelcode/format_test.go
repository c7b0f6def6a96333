package labelcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Render(t *testing.T) {
	f := DefaultFormat()

	assert.Equal(t, "CG7", f.Code(7))
	assert.Equal(t, "CG5000", f.Code(5000))
	assert.Equal(t, "0007", f.Serie(7))
	assert.Equal(t, "0015", f.Serie(15))
	assert.Equal(t, "12345", f.Serie(12345))

	assert.Equal(t, "0003", Format{Prefix: "CG"}.Serie(3), "zero pad width falls back to default")
}

func TestFormat_ParseCode(t *testing.T) {
	f := DefaultFormat()

	tests := []struct {
		tag    string
		want   int
		wantOK bool
	}{
		{"CG45", 45, true},
		{"CG0045", 45, true},
		{"cg12", 12, true},
		{"  CG9 ", 9, true},
		{"LABEL-CG310", 310, true},
		{"CGX-CG8", 8, true},
		{"CG", 0, false},
		{"", 0, false},
		{"12", 0, false},
		{"AB12", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := f.ParseCode(tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSerie(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"0012", 12, true},
		{" 7 ", 7, true},
		{"15abc", 15, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseSerie(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSameCode(t *testing.T) {
	assert.True(t, SameCode("cg12", "CG12"))
	assert.True(t, SameCode(" CG12", "CG12 "))
	assert.False(t, SameCode("CG12", "CG0012"))
}
