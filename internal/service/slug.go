package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/google/uuid"
)

const (
	maxSlugAttempts = 10
	minSlugLength   = 3
	maxSlugLength   = 100
	slugSuffixLen   = 8
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugNonWord     = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators  = regexp.MustCompile(`[\s_-]+`)
	slugEdgeHyphens = regexp.MustCompile(`^-+|-+$`)
)

func Slugify(title string) string {
	slug := strings.TrimSpace(strings.ToLower(title))
	slug = slugNonWord.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return slugEdgeHyphens.ReplaceAllString(slug, "")
}

func randomSlugSuffix() string {
	return uuid.NewString()[:slugSuffixLen]
}

// generateUniqueSlug derives a slug from title that no event other than
// excludeID uses, retrying with a random suffix a bounded number of times.
func generateUniqueSlug(ctx context.Context, repo repository.EventRepository, title, excludeID string, suffix func() string) (string, error) {
	base := Slugify(title)
	if len(base) < minSlugLength {
		base += strings.Repeat("x", minSlugLength-len(base))
	}
	if len(base) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength], "-")
	}

	taken, err := repo.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}
	if !taken {
		return base, nil
	}

	stem := base
	if limit := maxSlugLength - slugSuffixLen - 1; len(stem) > limit {
		stem = strings.TrimRight(stem[:limit], "-")
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := stem + "-" + suffix()

		taken, err := repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: failed to generate unique slug after maximum attempts", entity.ErrDatabaseError)
}
