// Package notifier defines the abstraction used to deliver status messages
// to users and the composition of those messages.
package notifier

import (
	"context"

	"aimawatch/pkg/domain"
)

// Notifier delivers a message to a single user. Implementations map the user
// ID to whatever addressing the delivery channel uses.
//
//go:generate mockgen -package mocknotifier -source=interface.go -destination=mock/mocknotifier.go *
type Notifier interface {
	// Send delivers the message to the given user. Implementations must be
	// safe for concurrent use.
	Send(ctx context.Context, userID domain.UserID, message string) error
}
