package model

// Route names a destination screen.
type Route string

// Routes reachable from the components in this repository.
const (
	RouteNone         Route = ""
	RouteMain         Route = "Routers"
	RouteOnboarding   Route = "Onboarding"
	RouteAlertList    Route = "alertList"
	RouteMyPage       Route = "My"
	RouteAnnouncement Route = "announcement"
)
