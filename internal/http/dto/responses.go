package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// NullableResponse is a success whose data may be an explicit null.
type NullableResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

type CountResponse struct {
	Count int `json:"count"`
}
