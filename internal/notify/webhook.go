package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/theopenlane/httpsling"

	"github.com/tpakis/link-ops-sub001/internal/applinks"
)

// Message represents a Slack webhook message payload
type Message struct {
	// Text is the fallback text for the notification
	Text string `json:"text"`
	// Blocks holds the rich layout blocks for the message
	Blocks []Block `json:"blocks,omitempty"`
}

// Block represents a Slack Block Kit block
type Block struct {
	// Type is the block type (section, divider, header, etc.)
	Type string `json:"type"`
	// Text is the text object for this block
	Text *TextObject `json:"text,omitempty"`
}

// TextObject represents a Slack text object
type TextObject struct {
	// Type is the text type (plain_text or mrkdwn)
	Type string `json:"type"`
	// Text is the actual text content
	Text string `json:"text"`
}

// Send posts a message to the configured webhook
func (c *Client) Send(ctx context.Context, msg Message) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.webhookURL),
		httpsling.Post(),
		httpsling.JSON(false),
		httpsling.Body(msg),
		httpsling.WithDoer(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// ReportMessage turns a diagnostics report with issues into a webhook message
// summarizing each failing domain and its diagnosed reasons.
func ReportMessage(report *applinks.DiagnosticsReport) Message {
	header := fmt.Sprintf("App Links verification failing for %s on %s: %d of %d domain(s) unhealthy",
		report.PackageName, report.DeviceID, report.FailedCount(), report.DomainCount())

	blocks := []Block{{
		Type: "header",
		Text: &TextObject{Type: "plain_text", Text: header},
	}}

	for _, d := range report.Domains {
		if !d.HasIssues() {
			continue
		}

		reasons := make([]string, 0, len(d.FailureReasons))
		for _, r := range d.FailureReasons {
			reasons = append(reasons, string(r))
		}

		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s* (%s): %s", d.Domain, d.State, strings.Join(reasons, ", ")),
			},
		})
	}

	return Message{Text: header, Blocks: blocks}
}
