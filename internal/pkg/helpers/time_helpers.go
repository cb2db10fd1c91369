package helpers

import (
	"time"

	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// DateLayout is the layout of date query parameters
const DateLayout = "2006-01-02"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDateRange reads the optional "from" and "to" query dates (YYYY-MM-DD, both
// inclusive) and returns them as a half-open [from, to) range in UTC.
func ParseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, nil, apperrors.NewBadRequestError("from must be a date in YYYY-MM-DD format")
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, nil, apperrors.NewBadRequestError("to must be a date in YYYY-MM-DD format")
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperrors.NewBadRequestError("from must not be after to")
	}
	return from, to, nil
}
