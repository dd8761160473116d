package handler

import "github.com/99minutos/attendance-kiosk/internal/core/ports"

type loginRequest struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}

type viewResponse struct {
	View    ports.View     `json:"view"`
	Notices []ports.Notice `json:"notices"`
}

// scanSignalRequest is one decoder callback. Exactly one of Text and
// Error is set; Benign marks the "nothing decoded yet" error.
type scanSignalRequest struct {
	Text   string `json:"text"   validate:"required_without=Error,excluded_with=Error"`
	Error  string `json:"error"  validate:"required_without=Text"`
	Benign bool   `json:"benign"`
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// grantLocationRequest optionally carries the fix that satisfies the
// grant immediately.
type grantLocationRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
}

type locationErrorRequest struct {
	Reason  string `json:"reason" validate:"required,oneof=denied timeout unavailable"`
	Message string `json:"message"`
}

type fixResponse struct {
	Delivered bool `json:"delivered"`
}
