package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sportlink/sportlink-backend/brackets"
	"github.com/sportlink/sportlink-backend/models"
)

type recordedEvent struct {
	room  string
	event brackets.Event
}

type recordingHub struct {
	events []recordedEvent
}

func (h *recordingHub) BroadcastToRoom(room string, event brackets.Event) {
	h.events = append(h.events, recordedEvent{room: room, event: event})
}

func TestDispatchDueSendsOnce(t *testing.T) {
	repo := newFakeNotificationRepo()
	hub := &recordingHub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(repo, hub, logger)

	now := time.Now()
	for _, userID := range []int{1, 2} {
		if _, err := svc.Schedule(context.Background(), userID, models.NotificationMatchSchedule,
			"Upcoming matches", "body", nil, now.Add(-time.Hour)); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	// Уведомление с будущей датой не должно уходить.
	if _, err := svc.Schedule(context.Background(), 3, models.NotificationMatchSchedule,
		"Upcoming matches", "body", nil, now.Add(time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	sent, err := svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 dispatched notifications, got %d", sent)
	}
	if len(hub.events) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(hub.events))
	}
	if hub.events[0].room != "user:1" || hub.events[1].room != "user:2" {
		t.Errorf("unexpected rooms: %s, %s", hub.events[0].room, hub.events[1].room)
	}

	// Повторный прогон ничего не рассылает.
	sent, err = svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected no re-dispatch, got %d", sent)
	}
}

func TestDispatchDueSurvivesRestart(t *testing.T) {
	repo := newFakeNotificationRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now()

	svc := NewNotificationService(repo, &recordingHub{}, logger)
	if _, err := svc.Schedule(context.Background(), 1, models.NotificationMatchSchedule,
		"Upcoming matches", "body", nil, now.Add(-time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if sent, err := svc.DispatchDue(context.Background(), now); err != nil || sent != 1 {
		t.Fatalf("first dispatch: sent=%d err=%v", sent, err)
	}

	// Новый экземпляр сервиса поверх того же хранилища (рестарт процесса):
	// отметка dispatched_at лежит в строке, а не в памяти.
	hub := &recordingHub{}
	restarted := NewNotificationService(repo, hub, logger)
	sent, err := restarted.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("dispatch after restart: %v", err)
	}
	if sent != 0 || len(hub.events) != 0 {
		t.Fatalf("notification re-dispatched after restart: sent=%d events=%d", sent, len(hub.events))
	}
}
