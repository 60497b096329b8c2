package notifications

import "github.com/azure/brand-pulse/internal/models"

// Relay mirrors pushed notifications to an external channel
type Relay interface {
	Forward(notification models.Notification) error
}
