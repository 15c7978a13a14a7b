package auth

// Routes of the client.
const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
)

// Resolve applies the route guard: the calendar needs a signed-in user, and
// the login and register pages send signed-in users to the calendar. It
// returns the route to show for the requested one.
func Resolve(route string, authenticated bool) string {
	switch route {
	case RouteHome:
		if !authenticated {
			return RouteLogin
		}
	case RouteLogin, RouteRegister:
		if authenticated {
			return RouteHome
		}
	}
	return route
}
