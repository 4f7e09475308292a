package importing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/stockroom/internal/domain/models"
)

func candidateSet(codes ...string) []models.Product {
	out := make([]models.Product, len(codes))
	for i, code := range codes {
		out[i] = models.Product{Code: code, Name: "P" + code}
	}
	return out
}

func TestResolveSkipPolicy(t *testing.T) {
	existing := map[string]bool{"A": true, "C": true}
	res, err := Resolve(existing, candidateSet("A", "B", "C", "D", "E"), models.PolicySkip)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Commits, 3)
	// Input order preserved for everything that survives.
	assert.Equal(t, "B", res.Commits[0].Product.Code)
	assert.Equal(t, "D", res.Commits[1].Product.Code)
	assert.Equal(t, "E", res.Commits[2].Product.Code)
	for _, c := range res.Commits {
		assert.False(t, c.ReplaceExisting)
	}
}

func TestResolveKeepPolicyRenamesWithoutCollisions(t *testing.T) {
	existing := map[string]bool{"A": true, "B": true, "A_copy": true}
	res, err := Resolve(existing, candidateSet("A", "B", "C"), models.PolicyKeep)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Commits, 3)

	seen := make(map[string]bool)
	for _, c := range res.Commits {
		assert.False(t, existing[c.Product.Code], "renamed code %q still collides", c.Product.Code)
		assert.False(t, seen[c.Product.Code], "code %q granted twice", c.Product.Code)
		seen[c.Product.Code] = true
	}
	// A_copy is taken, so the rename steps to the numbered suffix.
	assert.Equal(t, "A_copy2", res.Commits[0].Product.Code)
	assert.Equal(t, "B_copy", res.Commits[1].Product.Code)
	assert.Equal(t, "C", res.Commits[2].Product.Code)
}

func TestResolveReplacePolicy(t *testing.T) {
	existing := map[string]bool{"A": true, "B": true}
	res, err := Resolve(existing, candidateSet("A", "B", "C", "D", "E"), models.PolicyReplace)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Commits, 5)
	assert.True(t, res.Commits[0].ReplaceExisting)
	assert.True(t, res.Commits[1].ReplaceExisting)
	assert.False(t, res.Commits[2].ReplaceExisting)
	assert.Equal(t, "A", res.Commits[0].Product.Code)
}

// Repeated codes inside one file are not duplicates; only collisions with
// the persisted record set count.
func TestResolveIgnoresIntraFileRepeats(t *testing.T) {
	res, err := Resolve(map[string]bool{}, candidateSet("X", "X", "Y"), models.PolicySkip)
	require.NoError(t, err)

	assert.Zero(t, res.Duplicates)
	assert.Len(t, res.Commits, 3)
}

func TestResolveKeepManyCollisions(t *testing.T) {
	existing := map[string]bool{"A": true}
	candidates := candidateSet("A", "A", "A")

	res, err := Resolve(existing, candidates, models.PolicyKeep)
	require.NoError(t, err)
	require.Len(t, res.Commits, 3)

	seen := make(map[string]bool)
	for _, c := range res.Commits {
		require.False(t, seen[c.Product.Code] || existing[c.Product.Code],
			fmt.Sprintf("collision on %q", c.Product.Code))
		seen[c.Product.Code] = true
	}
}

func TestResolveRejectsUnknownPolicy(t *testing.T) {
	_, err := Resolve(map[string]bool{}, candidateSet("A"), models.DuplicatePolicy("merge"))
	assert.Error(t, err)
}
