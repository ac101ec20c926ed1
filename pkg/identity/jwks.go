package identity

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
)

// NewProviderKeySet loads the provider JWKS and keeps it refreshed in the background
// until ctx is cancelled.
func NewProviderKeySet(ctx context.Context, jwksURL string) (KeySet, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load identity provider key set: %w", err)
	}
	return k, nil
}
