package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/go-resty/resty/v2"
)

// TeamsRelay posts error and warning notifications to a Teams webhook
type TeamsRelay struct {
	webhookURL string
	client     *resty.Client
	types      map[models.NotificationType]bool
}

// Ensure TeamsRelay implements Relay
var _ Relay = (*TeamsRelay)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewTeamsRelay creates a relay for webhookURL
func NewTeamsRelay(webhookURL string) *TeamsRelay {
	return &TeamsRelay{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(30 * time.Second),
		types: map[models.NotificationType]bool{
			models.NotificationError:   true,
			models.NotificationWarning: true,
		},
	}
}

// Forward sends the notification when its severity is relayed
func (r *TeamsRelay) Forward(notification models.Notification) error {
	if !r.types[notification.Type] {
		return nil
	}

	resp, err := r.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(buildTeamsMessage(notification)).
		Post(r.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func buildTeamsMessage(notification models.Notification) *TeamsMessage {
	color := "605e5c"
	switch notification.Type {
	case models.NotificationError:
		color = "d13438"
	case models.NotificationWarning:
		color = "ffb900"
	}

	return &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: color,
		Title:      fmt.Sprintf("Brand Pulse %s: %s", strings.ToUpper(string(notification.Type)), notification.Title),
		Text:       notification.Message,
		Sections: []TeamsSection{{
			Facts: []TeamsFact{
				{Name: "Severity", Value: string(notification.Type)},
				{Name: "Raised", Value: notification.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
			},
			Markdown: true,
		}},
	}
}
