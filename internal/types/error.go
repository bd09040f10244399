package types

import "fmt"

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// ValidationErrors maps a field key to a localized message. Allocation cell
// errors use "hourTypeId" or "hourTypeId-classId" keys.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(v))
}

// NotFoundError marks a missing record so handlers can map it to a 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// VersionError marks a stale scenario version so handlers can map it to a
// 409 conflict.
type VersionError struct{}

func (e *VersionError) Error() string {
	return "E_VERSION"
}
