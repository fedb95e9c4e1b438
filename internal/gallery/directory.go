package gallery

import (
	"context"
	"strings"
)

// OpenDirectory accepts every identity key and derives the display name
// from the email local part. It backs the file-only mode, where no roster
// database exists to validate enrollment against.
type OpenDirectory struct{}

// Lookup implements IdentityDirectory.
func (OpenDirectory) Lookup(ctx context.Context, key string) (*IdentityInfo, error) {
	name := key
	if i := strings.Index(key, "@"); i > 0 {
		name = key[:i]
	}
	return &IdentityInfo{Name: name}, nil
}
