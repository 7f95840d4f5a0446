package dto

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// CurrentStatus and Attempted are set on 409 responses caused by an invalid lifecycle move.
	CurrentStatus string `json:"currentStatus,omitempty"`
	Attempted     string `json:"attempted,omitempty"`
}
