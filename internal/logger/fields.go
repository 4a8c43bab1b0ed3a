package logger

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	FieldProfileID  = "profile_id"
	FieldJobID      = "job_id"
	FieldBatchID    = "batch_id"
	FieldTotalScore = "total_score"
	// FieldCache is "hit" or "miss".
	FieldCache = "cache"

	// maxValueLength bounds free-text values such as titles and locations.
	maxValueLength = 64
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace, truncating long values and omitting entries with empty keys or
// values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := Truncate(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// MatchFields identifies a profile/job pair in log entries.
func MatchFields(profileID, jobID int64) []zap.Field {
	return []zap.Field{
		zap.Int64(FieldProfileID, profileID),
		zap.Int64(FieldJobID, jobID),
	}
}

// Truncate trims free text and cuts it to maxValueLength runes, marking the
// cut with an ellipsis.
func Truncate(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxValueLength {
		return s
	}
	return string([]rune(s)[:maxValueLength]) + "..."
}
