package theme

import "context"

// Store persists the global theme slot ("light" | "dark").
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, theme string) error
}
