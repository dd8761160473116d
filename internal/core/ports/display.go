package ports

import "time"

// NoticeLevel classifies a user notification.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient user notification.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Display is the passive screen surface the workflow renders to. Calls
// are made while the workflow holds its lock and must not block or call
// back into the workflow.
type Display interface {
	Render(view View)
	Notify(notice Notice)
}
