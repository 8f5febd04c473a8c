package bookingsync

import "install-schedule-backend/internal/store"

// ApiResponse models the top-level structure of the platform API's response.
type ApiResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int                     `json:"page"`
		PageSize int                     `json:"pageSize"`
		Total    int                     `json:"total"`
		Items    []store.PlatformBooking `json:"items"`
	} `json:"data"`
}
