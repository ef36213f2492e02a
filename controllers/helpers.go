package controllers

// Response is the standard success envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// Created is the standard response for new items
type Created struct {
	ID string `json:"id"`
}

// newResponse wraps a payload into the envelope
func newResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}
