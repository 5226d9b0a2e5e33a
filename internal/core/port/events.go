package port

import (
	"context"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishTokenRevoked(ctx context.Context, event domain.TokenRevokedEvent) error
}
