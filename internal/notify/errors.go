package notify

import "errors"

var (
	// ErrMissingWebhookURL is returned when a client is created without a webhook URL
	ErrMissingWebhookURL = errors.New("webhook URL is required")

	// ErrNotificationFailed is returned when the webhook request could not be sent
	ErrNotificationFailed = errors.New("failed to send notification")

	// ErrUnexpectedStatus is returned when the webhook responds with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected webhook response status")
)
