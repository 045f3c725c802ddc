package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUniqueFilename(t *testing.T) {
	a := GenerateUniqueFilename("flat white.PNG")
	b := GenerateUniqueFilename("flat white.PNG")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "flat_white_"))
	assert.True(t, strings.HasSuffix(a, ".png"))
}

func TestIsAllowedImage(t *testing.T) {
	assert.True(t, IsAllowedImage("latte.JPG"))
	assert.True(t, IsAllowedImage("mocha.webp"))
	assert.False(t, IsAllowedImage("menu.pdf"))
	assert.False(t, IsAllowedImage("noext"))
}
