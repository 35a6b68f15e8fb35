package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leadrelay/backend/internal/model"
	"github.com/leadrelay/backend/pkg/sms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Dispatch result labels reported to DispatchObserver.
const (
	DispatchSent     = "sent"
	DispatchFailed   = "failed"
	DispatchDisabled = "disabled"
)

// NotificationService notifies the administrator about a new lead.
type NotificationService interface {
	// Dispatch sends one SMS describing in. It never returns an error:
	// failures are reported in the result.
	Dispatch(ctx context.Context, in *model.MessageInput) model.DispatchResult
	// Enabled reports whether SMS credentials were configured.
	Enabled() bool
}

// DispatchObserver records dispatch outcomes.
type DispatchObserver interface {
	ObserveDispatch(result string)
}

type notificationServiceImpl struct {
	sender   sms.Sender
	from     string
	to       string
	observer DispatchObserver
	tracer   trace.Tracer
}

// NewNotificationService creates a NotificationService. When sender is nil
// or cfg lacks a sender/admin number, dispatch is disabled for the lifetime
// of the service. observer may be nil.
func NewNotificationService(sender sms.Sender, cfg sms.Config, observer DispatchObserver) NotificationService {
	s := &notificationServiceImpl{
		sender:   sender,
		from:     cfg.FromNumber,
		to:       cfg.AdminNumber,
		observer: observer,
		tracer:   otel.Tracer("github.com/leadrelay/backend/internal/service"),
	}
	if sender == nil || s.from == "" || s.to == "" {
		s.sender = nil
		slog.Warn("SMS dispatch disabled: Twilio credentials or phone numbers not configured")
	}
	return s
}

func (s *notificationServiceImpl) Enabled() bool { return s.sender != nil }

// Dispatch is detached from ctx cancellation so a client disconnect does not
// abort a notification for a lead that was already saved.
func (s *notificationServiceImpl) Dispatch(ctx context.Context, in *model.MessageInput) model.DispatchResult {
	if s.sender == nil {
		s.observe(DispatchDisabled)
		return model.DispatchResult{Success: false, Error: sms.ErrNotConfigured.Error()}
	}

	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "sms.dispatch",
		trace.WithAttributes(attribute.Int("lead.items", len(in.Items))))
	defer span.End()

	sid, err := s.sender.Send(ctx, s.to, s.from, FormatNotification(in))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("sms dispatch failed", "error", err)
		s.observe(DispatchFailed)
		return model.DispatchResult{Success: false, Error: err.Error()}
	}

	span.SetAttributes(attribute.String("sms.sid", sid))
	slog.Info("sms dispatched", "sid", sid)
	s.observe(DispatchSent)
	return model.DispatchResult{Success: true}
}

func (s *notificationServiceImpl) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveDispatch(result)
	}
}

// FormatNotification renders the administrator text for a lead. Items are
// listed by title; "None" stands in when there are no items.
func FormatNotification(in *model.MessageInput) string {
	items := "None"
	if len(in.Items) > 0 {
		items = strings.Join(in.ItemTitles(), ", ")
	}

	var b strings.Builder
	b.WriteString("New message from " + in.SenderName + "\n")
	b.WriteString("Email: " + in.SenderEmail + "\n")
	b.WriteString("Phone: " + in.SenderPhone + "\n")
	b.WriteString("Subject: " + in.Subject + "\n")
	b.WriteString("Items: " + items + "\n")
	b.WriteString("Message: " + in.Body)
	return b.String()
}
