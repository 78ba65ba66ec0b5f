package router

import (
	"net/http"

	"backups-api/handler"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "backups-api/docs"
)

func NewRouter(authHandler *handler.AuthHandler, authMw *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /refreshToken", handler.ErrorHandlingMiddleware(authHandler.RefreshToken))
	mux.Handle("POST /logout", authMw.Handle(handler.ErrorHandlingMiddleware(authHandler.Logout)))

	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
