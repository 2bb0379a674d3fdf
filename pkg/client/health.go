package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/common"
)

// Ready fetches /readyz once, without retries.  A 503 still yields the
// decoded report so callers can see which component is down.
func (c *Client) Ready(ctx context.Context) (*common.HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	var rep common.HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode health report")
	}
	return &rep, nil
}
