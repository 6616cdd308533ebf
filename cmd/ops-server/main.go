package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"support-bot-backend/internal/api"
	"support-bot-backend/internal/database"
	"support-bot-backend/internal/env"
	"support-bot-backend/internal/events"
	"support-bot-backend/internal/websocket"
)

func main() {
	if err := env.Require(env.OpsSecret, env.EventsRedisURL, env.AWSRegion); err != nil {
		log.Fatal(err)
	}

	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	handler := websocket.NewHandler(hub, env.Get(env.OpsSecret))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := events.NewPublisher(env.Get(env.EventsRedisURL), env.Get(env.EventsRedisPass))
	go handler.Pump(ctx, publisher.Subscribe(ctx))

	server := api.NewAPIServer(
		env.GetOrDefault(env.OpsAddr, ":8090"),
		db,
		handler,
		registerFeedRoutes,
	)
	server.Run()
}

func registerFeedRoutes(mux *http.ServeMux, s *api.APIServer) {
	mux.HandleFunc("/ws/feed", s.MakeHTTPHandleFunc(func(w http.ResponseWriter, r *http.Request) error {
		err := s.Handler().ServeFeed(w, r)
		if errors.Is(err, websocket.ErrUnauthorized) {
			return &api.HTTPError{StatusCode: http.StatusUnauthorized, Message: "unauthorized", ErrorLog: err}
		}
		return err
	}))
}
