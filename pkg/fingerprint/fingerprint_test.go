package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfIsDeterministicAndFixedWidth(t *testing.T) {
	a := Of("https://example.org/a", "CRYPTO")
	b := Of("https://example.org/a", "CRYPTO")

	assert.Equal(t, a, b)
	assert.Len(t, a, Size)
	assert.Len(t, Of(), Size)
}

func TestOfSeparatesParts(t *testing.T) {
	assert.NotEqual(t, Of("ab", "c"), Of("a", "bc"))
}

func TestItemFallsBackToTitle(t *testing.T) {
	assert.Equal(t, Of("Fed raises rates", "TREASURY"), Item("", "Fed raises rates", "treasury"))
	assert.Equal(t, Of("https://x.io/1", "TREASURY"), Item(" https://x.io/1 ", "ignored", "TREASURY"))
}

func TestItemDiffersBySector(t *testing.T) {
	assert.NotEqual(t, Item("https://x.io/1", "", "CRYPTO"), Item("https://x.io/1", "", "FINTECH"))
}

func TestBodyUsesPrefixOnly(t *testing.T) {
	long := strings.Repeat("a", 500)
	assert.Equal(t, Body(long), Body(long+"tail that is ignored"))
	assert.NotEqual(t, Body("short"), Body("shorter"))
}
