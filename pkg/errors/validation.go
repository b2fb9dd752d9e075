package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// MaxLabelLength bounds node labels.
const MaxLabelLength = 200

// nodeIDRegex matches node identifiers: letters, digits, dash, underscore, dot.
var nodeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateNodeID validates a node identifier. Edge IDs embed node IDs, and
// the CLI passes them as arguments, so the rules are conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - Letters, digits, dot, dash and underscore only
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "node id too long (max 128 characters)")
	}
	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid node id: %q", id)
	}
	return nil
}

// ValidateLabel validates a node label.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateStorageKey validates a storage key. Keys become file names,
// Redis keys and document IDs.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 200 characters
//   - No control characters
//   - No path traversal sequences (..) or separators
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "storage key cannot be empty")
	}
	if len(key) > 200 {
		return New(ErrCodeInvalidKey, "storage key too long (max 200 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "storage key contains invalid characters")
		}
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "storage key cannot contain path traversal sequences (..)")
	}
	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidKey, "storage key cannot contain path separators")
	}
	return nil
}

// ValidateStatus parses a status argument.
func ValidateStatus(s string) (roadmap.Status, error) {
	st, err := roadmap.ParseStatus(s)
	if err != nil {
		return "", Wrap(ErrCodeInvalidStatus, err, "invalid status")
	}
	return st, nil
}

// ValidateDirection parses a layout direction argument.
func ValidateDirection(s string) (roadmap.Direction, error) {
	d, err := roadmap.ParseDirection(strings.ToUpper(s))
	if err != nil {
		return "", Wrap(ErrCodeInvalidDirection, err, "invalid direction")
	}
	return d, nil
}

// ValidateRelationship parses an edge relationship argument.
func ValidateRelationship(s string) (roadmap.Relationship, error) {
	r, err := roadmap.ParseRelationship(strings.ToLower(s))
	if err != nil {
		return "", Wrap(ErrCodeInvalidRelationship, err, "invalid relationship")
	}
	return r, nil
}

// ValidateNode validates a complete node value.
func ValidateNode(n roadmap.Node) error {
	if err := ValidateNodeID(n.ID); err != nil {
		return err
	}
	if err := ValidateLabel(n.Data.Label); err != nil {
		return err
	}
	if err := n.Data.Validate(); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid node %q", n.ID)
	}
	for _, r := range n.Data.Resources {
		if err := ValidateURL(r.URL); err != nil {
			return err
		}
	}
	return nil
}
