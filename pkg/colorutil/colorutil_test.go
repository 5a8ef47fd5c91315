package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHSLToRGB(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, A: 255}, HSLToRGB(0, 1, 0.5))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, HSLToRGB(120, 1, 0.5))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, HSLToRGB(240, 1, 0.5))
	assert.Equal(t, White, HSLToRGB(0, 0, 1))
	assert.Equal(t, HSLToRGB(10, 1, 0.5), HSLToRGB(370, 1, 0.5))
}

func TestCategoryColorStable(t *testing.T) {
	assert.Equal(t, CategoryColor("Food"), CategoryColor("Food"))
	assert.NotEqual(t, CategoryColor("Food"), CategoryColor("Art"))
}

func TestMarkerStatesDistinct(t *testing.T) {
	assert.NotEqual(t, MarkerDefault, MarkerHover)
	assert.NotEqual(t, MarkerDefault, MarkerSelected)
	assert.NotEqual(t, MarkerHover, MarkerSelected)
}
