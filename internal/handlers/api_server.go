// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/subwaydeal/server/internal/middleware"
)

// NewAPIMux wires all HTTP and WebSocket routes onto a ServeMux. The same
// MatchServer backs the lobby flow and the match sockets so lobbies can hand
// players off to matches in-process.
func NewAPIMux(logger *logrus.Logger, ms *MatchServer) *http.ServeMux {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// user endpoints
	mux.HandleFunc("/user/create", CreateUserHandler)
	mux.HandleFunc("/user/login", LoginHandler)
	mux.HandleFunc("/user/claim", ClaimEphemeralHandler)

	// lobby endpoints
	mux.Handle("/lobby/create", logged(http.HandlerFunc(CreateLobbyHandler(ms))))
	mux.Handle("/lobby/list", logged(http.HandlerFunc(ListLobbiesHandler(ms))))
	mux.Handle("/lobby/ws/", logged(http.HandlerFunc(LobbyWSHandler(logger, ms))))

	// match websocket
	mux.Handle("/match/ws/", logged(http.HandlerFunc(MatchWSHandler(logger, ms))))

	return mux
}
