package ports

import (
	"context"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
)

// AttendanceWorkflow is the user-action surface of the attendance session
// state machine.
type AttendanceWorkflow interface {
	View() View
	Login(ctx context.Context, code, phone string) error
	Logout(ctx context.Context) error
	StartScan(ctx context.Context, dir domain.Direction) error
	CancelScan(ctx context.Context) error
	GrantLocation(ctx context.Context) error
	CancelLocation(ctx context.Context) error
}
