// Package notifier delivers plain-text messages to chat services.
package notifier

import "context"

// TextNotifier sends one message. Implementations own their retry policy.
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}
