package importing

import (
	"fmt"

	"github.com/kdiomande/stockroom/internal/domain/models"
)

// Commit is one candidate cleared for persistence. ReplaceExisting marks
// candidates whose existing row must be deleted before the create call.
type Commit struct {
	Product         models.Product
	ReplaceExisting bool
}

// Resolution is the resolver's verdict over a full candidate sequence.
// Commits preserve candidate order; Duplicates counts every code collision
// regardless of the policy applied to it.
type Resolution struct {
	Commits    []Commit
	Duplicates int
}

// keepSuffix is appended to a colliding code under the keep policy.
const keepSuffix = "_copy"

// Resolve classifies each candidate against the existing code set and
// applies the selected duplicate policy uniformly.
func Resolve(existingCodes map[string]bool, candidates []models.Product, policy models.DuplicatePolicy) (Resolution, error) {
	if !models.ValidDuplicatePolicy(policy) {
		return Resolution{}, fmt.Errorf("unknown duplicate policy %q", policy)
	}

	// Codes already granted to commits in this run. Keep-policy renames must
	// not collide with these either.
	granted := make(map[string]bool, len(candidates))

	var out Resolution
	for _, candidate := range candidates {
		if !existingCodes[candidate.Code] {
			granted[candidate.Code] = true
			out.Commits = append(out.Commits, Commit{Product: candidate})
			continue
		}

		out.Duplicates++
		switch policy {
		case models.PolicySkip:
			continue
		case models.PolicyKeep:
			candidate.Code = rename(candidate.Code, existingCodes, granted)
			granted[candidate.Code] = true
			out.Commits = append(out.Commits, Commit{Product: candidate})
		case models.PolicyReplace:
			granted[candidate.Code] = true
			out.Commits = append(out.Commits, Commit{Product: candidate, ReplaceExisting: true})
		}
	}
	return out, nil
}

// rename derives a code that collides with neither the existing record set
// nor any code already granted in this run.
func rename(code string, existing, granted map[string]bool) string {
	renamed := code + keepSuffix
	for n := 2; existing[renamed] || granted[renamed]; n++ {
		renamed = fmt.Sprintf("%s%s%d", code, keepSuffix, n)
	}
	return renamed
}

// PrescanDuplicates reports whether any candidate code collides with the
// existing record set. Used to decide whether the wizard must visit the
// configure step before commit.
func PrescanDuplicates(existingCodes map[string]bool, candidates []models.Product) bool {
	for _, candidate := range candidates {
		if existingCodes[candidate.Code] {
			return true
		}
	}
	return false
}
