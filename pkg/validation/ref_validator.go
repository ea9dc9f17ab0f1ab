package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/lineart-prep/internal/errors"
)

// RefValidator checks image refs before any I/O happens. A ref is an
// http(s) URL, an az://container/blob ref, or a local path.
type RefValidator struct {
	allowedSchemes []string
	allowedHosts   []string
	allowLocal     bool
}

// NewRefValidator creates a ref validator with default settings
func NewRefValidator() *RefValidator {
	return &RefValidator{
		allowedSchemes: []string{"http", "https", "az"},
		allowedHosts:   []string{}, // empty means all hosts allowed
		allowLocal:     true,
	}
}

// NewRemoteRefValidator rejects local paths; used for refs that arrive over HTTP
func NewRemoteRefValidator() *RefValidator {
	v := NewRefValidator()
	v.allowLocal = false
	return v
}

// NewRefValidatorWithOptions creates a ref validator with custom options
func NewRefValidatorWithOptions(schemes []string, hosts []string, allowLocal bool) *RefValidator {
	return &RefValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
		allowLocal:     allowLocal,
	}
}

// ValidateRef validates if the provided ref is acceptable as pipeline input or output
func (v *RefValidator) ValidateRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return apperrors.NewValidationError("image reference cannot be empty", nil)
	}

	scheme, _, hasScheme := strings.Cut(ref, "://")
	if !hasScheme {
		// data:, file:, mailto: and friends; one letter is a Windows drive
		if u, err := url.Parse(ref); err == nil && len(u.Scheme) > 1 {
			return apperrors.NewValidationError("scheme not allowed: "+strings.ToLower(u.Scheme), nil)
		}
		if !v.allowLocal {
			return apperrors.NewValidationError("local paths are not allowed", nil)
		}
		return nil
	}

	parsedURL, err := url.Parse(ref)
	if err != nil {
		return apperrors.NewValidationError("invalid image reference format", err)
	}

	scheme = strings.ToLower(scheme)
	if !v.isSchemeAllowed(scheme) {
		return apperrors.NewValidationError("scheme not allowed: "+scheme, nil)
	}

	if parsedURL.Host == "" {
		if scheme == "az" {
			return apperrors.NewValidationError("blob reference must name a container", nil)
		}
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if scheme == "az" {
		if strings.Trim(parsedURL.Path, "/") == "" {
			return apperrors.NewValidationError("blob reference must name a blob", nil)
		}
		return nil
	}

	if len(v.allowedHosts) > 0 && !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *RefValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *RefValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
