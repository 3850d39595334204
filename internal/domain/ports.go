package domain

import "context"

// TextGenerator defines how the core talks to a text-completion backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator defines how the core talks to a text-to-image backend.
// The returned payload is a single raw image (PNG unless the backend
// says otherwise).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// QuotaStore is the external atomic counter service behind the daily
// image limit. IncrementAndGet must be a single atomic add-1-and-return
// keyed by (userID, day); a missing key counts from an implicit zero,
// so the first call for a new day returns 1.
type QuotaStore interface {
	IncrementAndGet(ctx context.Context, userID, day string) (int, error)
	// Get returns the current count without modifying it. found is
	// false when no record exists for the key.
	Get(ctx context.Context, userID, day string) (count int, found bool, err error)
}

// IdentityResolver produces a best-effort stable client identifier.
// forwardedFor is the raw X-Forwarded-For header value, possibly empty.
// Implementations never fail; they always return some string.
type IdentityResolver interface {
	Resolve(ctx context.Context, forwardedFor string) string
}
