package creditgate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ticketgate/internal/pkg/config"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

var errCreditGateUnavailable = errs.New("credit gate unavailable")

// Client talks to the external organizer-credit service. When no base URL
// is configured (local development) every organizer is treated as having
// unlimited credits.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.CreditGateConfig) shared.CreditGate {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) AvailableCredits(ctx context.Context, organizerID uuid.UUID) (int, error) {
	if c.baseURL == "" {
		return int(^uint(0) >> 1), nil
	}

	url := fmt.Sprintf("%s/organizers/%s/credits", c.baseURL, organizerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errs.Wrap(err, "failed to build credit gate request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errs.Mark(errs.Wrap(err, "credit gate request failed"), errCreditGateUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errs.Mark(errs.New(fmt.Sprintf("credit gate returned status %d", resp.StatusCode)), errCreditGateUnavailable)
	}

	var body struct {
		Credits int `json:"credits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, errs.Wrap(err, "failed to decode credit gate response")
	}
	return body.Credits, nil
}
