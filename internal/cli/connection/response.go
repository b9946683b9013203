package connection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/telemetry/metric"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// errorBody is the backend's error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ParseResponse closes resp.Body and decodes a 2xx JSON reply into target.
// An empty 2xx body leaves target untouched. A *[]byte target receives
// the body as is. Non-2xx statuses become
// ErrUnauthorized for 401 and 403 and ErrRemote otherwise, with the
// backend's message as details.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.ErrNetworkFailure.WithCause(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if raw, ok := target.(*[]byte); ok {
		*raw = data
		return nil
	}
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return domain.ErrBadResponse.WithCause(fmt.Errorf("parse response: %w", err))
	}
	return nil
}

func statusError(status int, data []byte) error {
	base := domain.ErrRemote
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		base = domain.ErrUnauthorized
	}
	cause := fmt.Errorf("request failed with status %d", status)

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		if msg != "" {
			if body.Code != "" {
				cause = fmt.Errorf("request failed with status %d [%s]", status, body.Code)
			}
			return base.WithDetails(msg).WithCause(cause)
		}
	}
	return base.WithCause(cause)
}

// outcomeOf maps a call error to its metrics outcome label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metric.OutcomeOK
	case errors.Is(err, domain.ErrNetworkFailure):
		return metric.OutcomeUnreachable
	case errors.Is(err, domain.ErrUnauthorized):
		return metric.OutcomeRejected
	default:
		return metric.OutcomeError
	}
}
