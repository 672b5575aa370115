package googlemaps

// matrixResponse mirrors the Distance Matrix API payload, trimmed to the
// fields the optimizer consumes.
type matrixResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Rows         []matrixRow `json:"rows"`
}

type matrixRow struct {
	Elements []matrixElement `json:"elements"`
}

type matrixElement struct {
	Status            string       `json:"status"`
	Distance          *matrixValue `json:"distance,omitempty"`
	Duration          *matrixValue `json:"duration,omitempty"`
	DurationInTraffic *matrixValue `json:"duration_in_traffic,omitempty"`
}

type matrixValue struct {
	Value int64  `json:"value"`
	Text  string `json:"text,omitempty"`
}

// Top-level statuses returned by the Distance Matrix API.
const (
	statusOK               = "OK"
	statusOverQueryLimit   = "OVER_QUERY_LIMIT"
	statusRequestDenied    = "REQUEST_DENIED"
	statusInvalidRequest   = "INVALID_REQUEST"
	statusUnknownError     = "UNKNOWN_ERROR"
	elementStatusOK        = "OK"
	elementStatusNotFound  = "NOT_FOUND"
	elementStatusZeroRoute = "ZERO_RESULTS"
)
