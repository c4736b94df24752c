package config

import (
	"fmt"
	"time"
)

// ValidateDuration validates that a duration is within a range, both
// bounds inclusive. Error messages include the actual value and the
// valid range so operators can fix the setting.
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if duration < min {
		return fmt.Errorf("duration %v is below minimum %v", duration, min)
	}

	if duration > max {
		return fmt.Errorf("duration %v exceeds maximum %v", duration, max)
	}

	return nil
}

// ValidateIntRange validates that an integer is within a range, both
// bounds inclusive.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}

	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}

	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}

	return nil
}

// ValidatePositiveDuration validates that a duration is strictly
// positive. Zero means "disabled" in some libraries and is rejected
// here on purpose; timeouts and intervals must be real.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	return nil
}

// ValidateLanguage validates a summary language code. The pipeline
// prompts are written for Korean and English only.
func ValidateLanguage(lang string) error {
	switch lang {
	case "ko", "en":
		return nil
	default:
		return fmt.Errorf("unsupported language '%s' (must be 'ko' or 'en')", lang)
	}
}
