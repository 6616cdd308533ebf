package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"support-bot-backend/internal/api"
	"support-bot-backend/internal/bot"
	"support-bot-backend/internal/database"
	"support-bot-backend/internal/env"
	"support-bot-backend/internal/events"
	"support-bot-backend/internal/queue"
	"support-bot-backend/internal/service/ticket"
	"support-bot-backend/internal/session"
	"support-bot-backend/internal/transport/telegram"
)

func main() {
	if err := env.Require(env.BotToken, env.AdminIDs, env.AWSRegion); err != nil {
		log.Fatal(err)
	}

	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	tickets := ticket.New(db, retentionPolicy())
	sessions := session.NewRegistry(session.PendingTimeout, time.Now)

	tp, err := telegram.New(env.Get(env.BotToken))
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	var recorder events.Recorder = events.Nop{}
	if addr := env.Get(env.EventsRedisURL); addr != "" {
		recorder = events.NewPublisher(addr, env.Get(env.EventsRedisPass))
	}

	notify := queue.NewDispatcher(tp, 64, 4, bot.CountNotifyFailure)
	defer notify.Shutdown()

	if addr := env.Get(env.MetricsAddr); addr != "" {
		api.RegisterQueueDepth("notify", notify.Depth)
		go api.NewAPIServer(addr, db, nil).Run()
	}

	router := bot.New(tickets, sessions, tp, recorder, notify, bot.Config{
		Admins:      adminIDs(),
		AllowReopen: env.GetOrDefault(env.AllowReopen, "true") == "true",
		WorkStart:   workHour(0),
		WorkEnd:     workHour(1),
		OpsSecret:   env.Get(env.OpsSecret),
		OpsFeedURL:  env.Get(env.OpsFeedURL),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := ticket.NewSweeper(tickets, sweepInterval())
	go sweeper.Run(ctx)

	log.Println("support bot running")
	tp.Run(ctx, router)
}

func adminIDs() map[int64]struct{} {
	admins := make(map[int64]struct{})
	for _, raw := range strings.Split(env.Get(env.AdminIDs), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			log.Fatalf("bad admin id %q: %v", raw, err)
		}
		admins[id] = struct{}{}
	}
	return admins
}

func retentionPolicy() ticket.RetentionPolicy {
	days := ticket.DefaultRetentionDays
	if raw := env.Get(env.RetentionDays); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			log.Fatalf("bad %s: %q", env.RetentionDays, raw)
		}
		days = parsed
	}
	return ticket.RetentionPolicy{
		Days:           days,
		FromResolution: env.Get(env.RetentionAnchor) == "true",
	}
}

// workHour parses WORK_HOURS of the form "9-18"; index 0 is the start hour.
func workHour(index int) int {
	raw := env.Get(env.WorkHours)
	if raw == "" {
		return 0
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		log.Fatalf("bad %s: %q", env.WorkHours, raw)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[index]))
	if err != nil || h < 0 || h > 24 {
		log.Fatalf("bad %s: %q", env.WorkHours, raw)
	}
	return h
}

func sweepInterval() time.Duration {
	raw := env.Get(env.SweepInterval)
	if raw == "" {
		return ticket.DefaultSweepInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Fatalf("bad %s: %q", env.SweepInterval, raw)
	}
	return d
}
