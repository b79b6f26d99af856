package app

import (
	"log/slog"
	"net/http"

	"github.com/cinex/cinema-ticketing/internal/domain"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
	SessionKeyRole   = sessionKey("role")
	contextKeyLogger = sessionKey("logger")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetUserId(r *http.Request) int {
	userId, ok := r.Context().Value(SessionKeyUserId).(int)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

func (app *Application) contextGetRole(r *http.Request) domain.Role {
	role, ok := r.Context().Value(SessionKeyRole).(domain.Role)
	if !ok {
		return domain.RoleUser
	}

	return role
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(contextKeyLogger).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}
