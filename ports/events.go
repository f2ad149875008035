package ports

import (
	"context"

	"github.com/chainmall/authgate/core"
)

// EventPublisher notifies other services about session lifecycle changes
type EventPublisher interface {
	PublishLogin(ctx context.Context, principal core.Principal) error
	PublishLogout(ctx context.Context, subject string) error
}
