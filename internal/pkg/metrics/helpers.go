package metrics

import (
	"strconv"
	"strings"
	"time"
)

// RecordDBOperation records database operation metrics consistently
// repo: repository name (e.g., "user", "product")
// operation: operation name (e.g., "create", "get_by_email", "update")
// rowsAffected: rows affected/returned (-1 if not applicable)
func RecordDBOperation(repo, operation string, duration time.Duration, rowsAffected int64, err error) {
	DBDuration.WithLabelValues(repo, operation).Observe(float64(duration.Milliseconds()))

	if rowsAffected >= 0 {
		DBRowsAffected.WithLabelValues(repo, operation).Observe(float64(rowsAffected))
	}

	status := "success"
	if err != nil {
		status = "error"
		DBErrors.WithLabelValues(repo, operation, ClassifyDBError(err)).Inc()
	}
	DBOperations.WithLabelValues(repo, operation, status).Inc()
}

// RecordHTTPRequest records a finished HTTP request. route is the mux path
// template, not the raw URL, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(float64(duration.Milliseconds()))
}

// ClassifyDBError categorizes database errors for metrics
func ClassifyDBError(err error) string {
	if err == nil {
		return "none"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "duplicate") || strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "conflict"):
		return "duplicate"
	case strings.Contains(errStr, "not found") || strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect"):
		return "connection"
	case strings.Contains(errStr, "constraint"):
		return "constraint"
	default:
		return "other"
	}
}
