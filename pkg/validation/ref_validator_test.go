package validation

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/anime-shed/lineart-prep/internal/errors"
)

func appMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got: %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("Expected validation error, got %s", appErr.Type)
	}
	return appErr.Message
}

func TestNewRefValidator(t *testing.T) {
	validator := NewRefValidator()
	if validator == nil {
		t.Fatal("Expected non-nil ref validator")
	}

	expectedSchemes := []string{"http", "https", "az"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Fatalf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
	for i, scheme := range expectedSchemes {
		if validator.allowedSchemes[i] != scheme {
			t.Errorf("Expected scheme %s, got %s", scheme, validator.allowedSchemes[i])
		}
	}
	if !validator.allowLocal {
		t.Error("Expected local paths to be allowed by default")
	}
}

func TestValidateRef_Valid(t *testing.T) {
	validator := NewRefValidator()

	validRefs := []string{
		"http://example.com/image.jpg",
		"https://example.com/line-art.png",
		"https://subdomain.example.com/path/to/image.webp?sig=abc",
		"HTTPS://Example.com/a.png",
		"az://art/page1.png",
		"az://art/nested/page1.svg",
		"scans/page1.png",
		"/abs/path/page1.jpg",
		`C:\scans\page1.png`,
	}

	for _, ref := range validRefs {
		if err := validator.ValidateRef(ref); err != nil {
			t.Errorf("Expected valid ref %s to pass validation, got error: %v", ref, err)
		}
	}
}

func TestValidateRef_Empty(t *testing.T) {
	validator := NewRefValidator()

	for _, ref := range []string{"", "   ", "\t\n"} {
		err := validator.ValidateRef(ref)
		if err == nil {
			t.Fatalf("Expected empty ref '%s' to fail validation", ref)
		}
		if msg := appMessage(t, err); msg != "image reference cannot be empty" {
			t.Errorf("Expected empty-ref error, got: %s", msg)
		}
	}
}

func TestValidateRef_Invalid(t *testing.T) {
	validator := NewRefValidator()

	tests := []struct {
		ref     string
		message string
	}{
		{ref: "://missing-scheme", message: "invalid image reference format"},
		{ref: "http://", message: "URL must have a valid host"},
		{ref: "http:///path", message: "URL must have a valid host"},
		{ref: "ftp://example.com/image.jpg", message: "scheme not allowed: ftp"},
		{ref: "file://local/path/image.jpg", message: "scheme not allowed: file"},
		{ref: "data:image/png;base64,iVBORw0KGgo=", message: "scheme not allowed: data"},
		{ref: "az:///page1.png", message: "blob reference must name a container"},
		{ref: "az://art", message: "blob reference must name a blob"},
		{ref: "az://art/", message: "blob reference must name a blob"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			err := validator.ValidateRef(tt.ref)
			if err == nil {
				t.Fatalf("Expected ref '%s' to fail validation", tt.ref)
			}
			if msg := appMessage(t, err); !strings.HasPrefix(msg, tt.message) {
				t.Errorf("Expected %q, got %q", tt.message, msg)
			}
		})
	}
}

func TestValidateRef_RemoteRejectsLocal(t *testing.T) {
	validator := NewRemoteRefValidator()

	err := validator.ValidateRef("/etc/passwd")
	if err == nil {
		t.Fatal("Expected local path to be rejected")
	}
	if msg := appMessage(t, err); msg != "local paths are not allowed" {
		t.Errorf("Unexpected message: %s", msg)
	}
	if err := validator.ValidateRef("https://example.com/a.png"); err != nil {
		t.Errorf("Expected remote ref to pass, got %v", err)
	}
}

func TestValidateRef_RestrictedHosts(t *testing.T) {
	validator := NewRefValidatorWithOptions([]string{"http", "https"}, []string{"example.com", "trusted.com"}, false)

	for _, ref := range []string{"http://example.com/image.jpg", "https://trusted.com:8443/image.png"} {
		if err := validator.ValidateRef(ref); err != nil {
			t.Errorf("Expected allowed host ref '%s' to pass validation, got error: %v", ref, err)
		}
	}

	for _, ref := range []string{"http://malicious.com/image.jpg", "https://untrusted.com/image.png"} {
		err := validator.ValidateRef(ref)
		if err == nil {
			t.Fatalf("Expected disallowed host ref '%s' to fail validation", ref)
		}
		if msg := appMessage(t, err); msg != "URL host not allowed" {
			t.Errorf("Expected 'URL host not allowed' error, got: %s", msg)
		}
	}

	if err := validator.ValidateRef("az://art/a.png"); err == nil {
		t.Error("Expected az scheme to be rejected when not allowed")
	}
}

func TestIsSchemeAllowed(t *testing.T) {
	validator := NewRefValidator()

	for _, scheme := range []string{"http", "https", "az"} {
		if !validator.isSchemeAllowed(scheme) {
			t.Errorf("Expected %s scheme to be allowed", scheme)
		}
	}
	for _, scheme := range []string{"ftp", "file"} {
		if validator.isSchemeAllowed(scheme) {
			t.Errorf("Expected %s scheme to be disallowed", scheme)
		}
	}
}
