package fakeapi

// Route path constants, relative to the /api mount point.
const (
	RouteToken        = "/token/"
	RouteTokenRefresh = "/token/refresh/"
	RouteTickets      = "/tickets/"
	RouteTicket       = "/tickets/{id}/"
	RouteTicketReply  = "/tickets/{id}/reply/"
	RouteTicketAI     = "/tickets/{id}/ai-response/"
	RouteUsers        = "/users/"

	// APIPrefix is where the router is mounted by the standalone server.
	APIPrefix = "/api"
)
