package state

// Client-side route names used by the guards.
const (
	LoginRoute     = "/auth"
	DashboardRoute = "/dashboard"
)

// GuardResult is the outcome of a navigation check: either the navigation
// is allowed, or the caller must redirect to Redirect instead.
type GuardResult struct {
	Allowed  bool
	Redirect string
}

// Allow permits the navigation.
func Allow() GuardResult { return GuardResult{Allowed: true} }

// RedirectTo denies the navigation and names the route to go to instead.
func RedirectTo(route string) GuardResult { return GuardResult{Redirect: route} }

// RequireAuth permits navigation only for authenticated sessions; everyone
// else is sent to the login route.  Pure and synchronous: it inspects only
// the session's current state.
func RequireAuth(s *Session) GuardResult {
	if s.IsAuthenticated() {
		return Allow()
	}
	return RedirectTo(LoginRoute)
}

// RequireGuest permits navigation only for unauthenticated sessions; a
// logged-in user is sent to the dashboard.  Keeps authenticated users off
// the login screen.
func RequireGuest(s *Session) GuardResult {
	if s.IsAuthenticated() {
		return RedirectTo(DashboardRoute)
	}
	return Allow()
}
