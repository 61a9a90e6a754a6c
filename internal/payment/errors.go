package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

const maxErrorBody = 64 << 10

// CodeTimeout marks a confirmation whose outcome is unknown because the
// provider did not answer in time.  The charge may still have gone through.
const CodeTimeout = "PROVIDER_TIMEOUT"

// providerError is the structured error body returned by the provider.
type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleErrorResponse turns a non-2xx provider response into a
// *model.PaymentError, keeping the provider's code and message.
func handleErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var pe providerError
	if err := json.Unmarshal(raw, &pe); err != nil || pe.Code == "" {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &model.PaymentError{Status: resp.StatusCode, Code: "UNKNOWN_ERROR", Message: msg}
	}
	return &model.PaymentError{Status: resp.StatusCode, Code: pe.Code, Message: pe.Message}
}

// transportError reports a provider that could not be reached or did not
// answer within the configured timeouts.
func transportError(err error) error {
	code := "PROVIDER_UNAVAILABLE"
	if isTimeout(err) {
		code = CodeTimeout
	}
	return &model.PaymentError{Code: code, Message: err.Error()}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
