package gdrive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// wrapError maps a Drive API error onto the domain error taxonomy.
// Credential and permission failures are configuration errors (never
// retried); rate limiting and server-side failures surface as
// timeouts so the sync layer treats them as transient.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: drive credentials rejected: %v", domain.ErrConfiguration, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: insufficient drive permissions: %v", domain.ErrConfiguration, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: drive resource not found: %v", domain.ErrNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: drive rate limit exceeded: %v", domain.ErrTimeout, err)
	default:
		if gerr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: drive service unavailable: %v", domain.ErrTimeout, err)
		}
		return err
	}
}
