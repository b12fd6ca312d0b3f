package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{
		"0 0 * * *",
		"*/5 * * * *",
		"30 9 * * 1-5",
		"15,45 */2 * * 1,3,5",
		"0 0 1 1 *",
	}
	for _, schedule := range valid {
		assert.NoError(t, ValidateCronSchedule(schedule), schedule)
	}

	invalid := []string{
		"",
		"0 0",
		"0 0 * * * * *",
		"60 0 * * *",
		"0 0 * 13 *",
		"@every 5m", // descriptors are not part of the 5-field format
		"random text",
	}
	for _, schedule := range invalid {
		assert.Error(t, ValidateCronSchedule(schedule), schedule)
	}
}

func TestValidateCronSchedule_ErrorIncludesValue(t *testing.T) {
	err := ValidateCronSchedule("invalid")
	assert.ErrorContains(t, err, "invalid cron schedule 'invalid'")
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "America/New_York", "Europe/London", "Asia/Tokyo", "Local"} {
		assert.NoError(t, ValidateTimezone(tz), tz)
	}
	for _, tz := range []string{"", "Not/AZone", "+09:00", "EST5EDTX"} {
		assert.Error(t, ValidateTimezone(tz), tz)
	}
}

func TestValidateDuration(t *testing.T) {
	min, max := 5*time.Second, 5*time.Minute

	assert.NoError(t, ValidateDuration(30*time.Second, min, max))
	assert.NoError(t, ValidateDuration(min, min, max))
	assert.NoError(t, ValidateDuration(max, min, max))

	assert.ErrorContains(t, ValidateDuration(time.Second, min, max), "below minimum")
	assert.ErrorContains(t, ValidateDuration(time.Hour, min, max), "exceeds maximum")
	assert.ErrorContains(t, ValidateDuration(time.Second, max, min), "invalid range")
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(10, 1, 50))
	assert.NoError(t, ValidateIntRange(1, 1, 50))
	assert.NoError(t, ValidateIntRange(50, 1, 50))

	assert.ErrorContains(t, ValidateIntRange(0, 1, 50), "below minimum")
	assert.ErrorContains(t, ValidateIntRange(100, 1, 50), "exceeds maximum")
	assert.ErrorContains(t, ValidateIntRange(10, 50, 1), "invalid range")
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.NoError(t, ValidatePositiveDuration(time.Hour))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))
}
