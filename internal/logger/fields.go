package logger

import (
	"time"

	"go.uber.org/zap"
)

// RequestID returns the request id field.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method returns the HTTP method field.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path returns the request path field.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status returns the HTTP status field.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration returns the latency field.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// StudentID returns the student id field.
func StudentID(v uint) zap.Field {
	return zap.Uint("student_id", v)
}

// UserID returns the user id field.
func UserID(v uint) zap.Field {
	return zap.Uint("user_id", v)
}
