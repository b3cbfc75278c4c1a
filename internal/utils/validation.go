package utils

import (
	"errors"
	"regexp"
	"strconv"
)

// Check names come from the manifest: alphanumerics, underscore, hyphen, dot.
var validNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateCheckName validates a check name used as an API path parameter.
func ValidateCheckName(name string) error {
	if name == "" {
		return errors.New("check name cannot be empty")
	}
	if len(name) > 100 {
		return errors.New("check name too long (max 100 characters)")
	}
	if !validNamePattern.MatchString(name) {
		return errors.New("check name contains invalid characters")
	}
	return nil
}

// ParseRunID parses a run ID path parameter.
func ParseRunID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("run id must be a positive integer")
	}
	return id, nil
}

// ValidateLimit bounds a list limit query parameter, applying the default
// when the parameter is absent.
func ValidateLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}
