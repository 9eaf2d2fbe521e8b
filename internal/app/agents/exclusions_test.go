package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandExclusionsCoversGroups(t *testing.T) {
	out := ExpandExclusions([]string{"dairy-free"})
	for _, want := range []string{"dairy", "milk", "cheese", "yogurt", "butter"} {
		assert.Contains(t, out, want)
	}
}

func TestExpandExclusionsKeepsLiteralItems(t *testing.T) {
	out := ExpandExclusions([]string{"Broccoli", "vegetarian"})
	assert.Contains(t, out, "broccoli")
	assert.Contains(t, out, "chicken")
	assert.Contains(t, out, "salmon")
}

func TestExpandExclusionsDeduplicates(t *testing.T) {
	out := ExpandExclusions([]string{"dairy", "lactose", "milk"})
	seen := make(map[string]int)
	for _, item := range out {
		seen[item]++
	}
	assert.Equal(t, 1, seen["milk"])
	assert.Equal(t, 1, seen["dairy"])
}

func TestViolatesExclusionsMatchesWholeWords(t *testing.T) {
	excl := []string{"chicken", "nuts"}

	assert.Equal(t, "chicken", violatesExclusions([]string{"grilled chicken"}, excl))
	assert.Empty(t, violatesExclusions([]string{"chickpeas"}, excl))
	assert.Empty(t, violatesExclusions([]string{"butternut squash"}, excl))
	assert.Empty(t, violatesExclusions([]string{"rice", "broccoli"}, excl))
}

func TestCleanRestrictionsDropsNoneAnswers(t *testing.T) {
	out := cleanRestrictions([]string{"none", "vegetarian", "No"})
	assert.Equal(t, []string{"vegetarian"}, out)
}
