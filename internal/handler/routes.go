package handler

import (
	"net/http"

	"github.com/okonek/traintrack/internal/realtime"
	"github.com/okonek/traintrack/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	schedules *service.ScheduleService,
	chat *service.ChatService,
	feed *service.FeedService,
	metrics *service.MetricsService,
	countdown *service.CountdownService,
	hub *realtime.Hub,
	loginLimiter *service.TokenBucket,
	wsLimiter *service.TokenBucket,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, loginLimiter, cookieSecure)
	scheduleHandler := NewScheduleHandler(schedules)
	chatHandler := NewChatHandler(chat)
	feedHandler := NewFeedHandler(feed)
	metricsHandler := NewMetricsHandler(metrics)
	countdownHandler := NewCountdownHandler(countdown)
	wsHandler := NewWSHandler(hub, wsLimiter)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/logout", authHandler.HandleLogout)

	mux.Handle("GET /api/schedules", RequireAuth(auth, http.HandlerFunc(scheduleHandler.HandleList)))
	mux.Handle("POST /api/schedules", RequireAuth(auth, http.HandlerFunc(scheduleHandler.HandleCreate)))
	mux.Handle("GET /api/schedules/{id}", RequireAuth(auth, http.HandlerFunc(scheduleHandler.HandleGet)))
	mux.Handle("PUT /api/schedules/{id}", RequireAuth(auth, http.HandlerFunc(scheduleHandler.HandleUpdate)))
	mux.Handle("DELETE /api/schedules/{id}", RequireAuth(auth, http.HandlerFunc(scheduleHandler.HandleDelete)))

	mux.Handle("GET /api/chats/{peer}", RequireAuth(auth, http.HandlerFunc(chatHandler.HandleHistory)))

	mux.Handle("GET /api/feed", OptionalAuth(auth, http.HandlerFunc(feedHandler.HandleList)))
	mux.Handle("POST /api/feed", RequireAuth(auth, http.HandlerFunc(feedHandler.HandleCreate)))

	mux.Handle("POST /api/metrics", RequireAuth(auth, http.HandlerFunc(metricsHandler.HandleIngest)))
	mux.Handle("GET /api/metrics/daily", RequireAuth(auth, http.HandlerFunc(metricsHandler.HandleDaily)))

	mux.Handle("POST /api/countdown", RequireAuth(auth, http.HandlerFunc(countdownHandler.HandleStart)))
	mux.Handle("GET /api/countdown", RequireAuth(auth, http.HandlerFunc(countdownHandler.HandleRemaining)))
	mux.Handle("DELETE /api/countdown", RequireAuth(auth, http.HandlerFunc(countdownHandler.HandleClear)))

	mux.Handle("GET /ws", RequireAuth(auth, http.HandlerFunc(wsHandler.HandleConnect)))
}
