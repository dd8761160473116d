package service

import (
	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
)

// Screen names.
const (
	ScreenLogin     = "login"
	ScreenLoading   = "loading"
	ScreenDashboard = "dashboard"
	ScreenScanner   = "scanner"
	ScreenLocation  = "location"
)

type renderFunc func(w *Workflow, v *ports.View)

var renderers = map[domain.State]renderFunc{
	domain.StateUnauthenticated: func(_ *Workflow, v *ports.View) {
		v.Screen = ScreenLogin
		v.Prompt = "Enter your employee code and phone number"
	},
	domain.StateAuthenticating: func(_ *Workflow, v *ports.View) {
		v.Screen = ScreenLoading
		v.Prompt = "Logging in..."
	},
	domain.StateDashboard: func(_ *Workflow, v *ports.View) {
		v.Screen = ScreenDashboard
		v.Prompt = "Choose an action"
	},
	domain.StateScanning: func(w *Workflow, v *ports.View) {
		v.Screen = ScreenScanner
		v.Prompt = "Position the QR code within the frame"
		v.Direction = w.direction
		v.Holding = w.holding
	},
	domain.StateAwaitingLocation: func(w *Workflow, v *ports.View) {
		v.Screen = ScreenLocation
		v.Prompt = "Allow location access to continue"
		if w.locating {
			v.Prompt = "Getting your location..."
		}
		v.Direction = w.direction
		v.Locating = w.locating
		if w.payload != nil {
			v.SiteCoordinate = w.payload.SiteCoordinate
		}
	},
	domain.StateSubmitting: func(w *Workflow, v *ports.View) {
		v.Screen = ScreenLoading
		v.Prompt = w.direction.Progressive() + "..."
		v.Direction = w.direction
		if w.payload != nil {
			v.SiteCoordinate = w.payload.SiteCoordinate
		}
	},
}

// viewLocked projects the current state. Attendance enablement is only
// meaningful while authenticated.
func (w *Workflow) viewLocked() ports.View {
	v := ports.View{
		Revision: w.revision,
		State:    w.state,
	}
	if render, ok := renderers[w.state]; ok {
		render(w, &v)
	}
	if w.state.Authenticated() {
		v.Status = w.status
		v.CheckInEnabled = w.status.CanCheckIn()
		v.CheckOutEnabled = w.status.CanCheckOut()
		if w.identity != nil {
			v.Employee = w.identity.DisplayName
		}
	}
	return v
}
