package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/climate-guardian/climate-guardian-api/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

func postDiscordMessage(webhookURL string, message DiscordMessage) error {
	if webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}

func SendDiscordErrorNotification(errorMessage string) error {
	return postDiscordMessage(properties.DiscordErrorNotificationUrl(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Trigger Engine Error",
				Description: fmt.Sprintf("An error occurred: %s", errorMessage),
				Color:       16711680, // Red color
			},
		},
	})
}

func SendDiscordWarnNotification(warnMessage string) error {
	return postDiscordMessage(properties.DiscordWarnNotificationUrl(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "⚠️ Trigger Engine Warning",
				Description: warnMessage,
				Color:       16776960, // Yellow color
			},
		},
	})
}

func SendDiscordSuccessNotification(successMessage string) error {
	return postDiscordMessage(properties.DiscordSuccessNotificationUrl(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ Trigger Analysis Complete",
				Description: successMessage,
				Color:       65280, // Green color
			},
		},
	})
}
