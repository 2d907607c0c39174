package provider

import "fmt"

// ErrProviderNotFound means no vendor matched the request. Name is empty
// when the model has no vendor at all.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	if e.Name == "" {
		return "no provider registered for this model"
	}
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported means the named vendor does not serve the model.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam means a required query parameter is absent or empty.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials means a vendor rejected or lacks its credentials.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams returns an *ErrMissingParam for the first required key
// that is absent or empty.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if params[key] == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
