package relay

import (
	"context"

	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

// Relay best-effort records a move on an external chain. Submit returns a
// transaction reference; implementations translate their own soft failures
// (no signing key, missing hash) into placeholder references and reserve
// errors for transport problems, which callers also convert to
// placeholders. A relay must never block battle progression beyond the
// caller's context deadline.
type Relay interface {
	Submit(ctx context.Context, chain string, action game.Action) (string, error)
}
