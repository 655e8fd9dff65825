package model

// User is a registered subject, recorded on its first verified request.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
