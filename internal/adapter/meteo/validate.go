package meteo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// ValidationCode identifies why a feed URL was rejected.
type ValidationCode string

const (
	CodeCannotConnect ValidationCode = "cannot_connect"
	CodeInvalidXML    ValidationCode = "invalid_xml"
	CodeUnknown       ValidationCode = "unknown"
)

// ValidationError is returned by Validate.
type ValidationError struct {
	Code ValidationCode
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate feed: %s: %v", e.Code, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationCodeOf returns the code of a ValidationError in err's chain, or
// CodeUnknown.
func ValidationCodeOf(err error) ValidationCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeUnknown
}

// Validate checks that url answers 200 with a well-formed XML document. The
// document need not contain any warnings. It bypasses the circuit breaker
// and uses the validation timeout.
func (c *Client) Validate(ctx context.Context, url string) (domain.DocumentInfo, error) {
	info, _, err := c.Inspect(ctx, url)
	return info, err
}

// Inspect runs the same check as Validate and also returns the document it
// checked, for tooling that prints the feed.
func (c *Client) Inspect(ctx context.Context, url string) (domain.DocumentInfo, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.validateTimeout)
	defer cancel()

	client := &http.Client{Timeout: c.validateTimeout}
	body, status, err := c.get(ctx, client, url)
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return domain.DocumentInfo{}, nil, &ValidationError{Code: CodeCannotConnect, Err: err}
		}
		return domain.DocumentInfo{}, nil, &ValidationError{Code: CodeUnknown, Err: err}
	}
	if status != http.StatusOK {
		return domain.DocumentInfo{}, nil, &ValidationError{
			Code: CodeCannotConnect,
			Err:  &domain.FetchError{Kind: domain.FetchErrorHTTP, Status: status},
		}
	}

	info, err := domain.InspectDocument(body)
	if err != nil {
		return domain.DocumentInfo{}, nil, &ValidationError{Code: CodeInvalidXML, Err: err}
	}
	c.logger.Debug("feed validated", "url", url, "root", info.Root, "warnings", info.Warnings)
	return info, body, nil
}
