package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxEmailLength    = 254
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
	maxPasswordLength = 128
	maxLabelLength    = 100

	// Playback rates outside this range are rejected before reaching
	// the media element.
	MinPlaybackRate = 0.25
	MaxPlaybackRate = 4.0
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateEmail checks an email address for length and basic format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email is too long (max %d characters)", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername checks a username for length and allowed characters.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < minUsernameLength {
		return fmt.Errorf("username must be at least %d characters", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username is too long (max %d characters)", maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password is too long (max %d characters)", maxPasswordLength)
	}
	return nil
}

// ValidateSessionLabel checks a viewer session label. Labels are
// free-form display strings, so only emptiness, length, and UTF-8
// validity are enforced.
func ValidateSessionLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("session label is required")
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return fmt.Errorf("session label is too long (max %d characters)", maxLabelLength)
	}
	if !utf8.ValidString(label) {
		return fmt.Errorf("session label contains invalid characters")
	}
	return nil
}

// ValidatePlaybackRate checks that a rate is within the supported range.
func ValidatePlaybackRate(rate float64) error {
	if rate < MinPlaybackRate {
		return fmt.Errorf("playback rate must be at least %.2f", MinPlaybackRate)
	}
	if rate > MaxPlaybackRate {
		return fmt.Errorf("playback rate is too high (max %.2f)", MaxPlaybackRate)
	}
	return nil
}

// ValidateNonEmptyString checks that a field is not blank after trimming.
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength checks a field's rune count against bounds.
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
