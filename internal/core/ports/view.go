package ports

import "github.com/99minutos/attendance-kiosk/internal/core/domain"

// View is the display projection of the workflow at one revision.
type View struct {
	Revision uint64       `json:"revision"`
	State    domain.State `json:"state"`
	// Screen names the surface to show; Prompt is its headline.
	Screen string `json:"screen"`
	Prompt string `json:"prompt"`

	Employee        string                  `json:"employee,omitempty"`
	Status          domain.AttendanceStatus `json:"status"`
	CheckInEnabled  bool                    `json:"check_in_enabled"`
	CheckOutEnabled bool                    `json:"check_out_enabled"`

	// Attempt details, set only while an attempt is in progress.
	Direction      domain.Direction `json:"direction,omitempty"`
	SiteCoordinate string           `json:"site_coordinate,omitempty"`
	Locating       bool             `json:"locating"`
	// Holding is true while a scan result is shown before the workflow
	// returns to the dashboard on its own.
	Holding bool `json:"holding"`
}
