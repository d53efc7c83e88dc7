package errors

const (
	HttpInternalError      = "internal_error"
	HttpInvalidParameter   = "invalid_parameter"
	HttpInvalidWindow      = "invalid_window"
	HttpUnknownAggregation = "unknown_aggregation"
	HttpMissingColumn      = "missing_column"
	HttpDatasetNotLoaded   = "dataset_not_loaded"
	HttpRunNotFound        = "run_not_found"
	HttpStoreNotConfigured = "store_not_configured"
)

// ErrorResponse is the error response body of the query API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
