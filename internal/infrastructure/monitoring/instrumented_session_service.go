package monitoring

import (
	"context"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/tracing"
)

// InstrumentedSessionService decorates a session service with lifecycle
// metrics and tracing spans. Per-sample metrics flow through the
// collector's observer path instead.
type InstrumentedSessionService struct {
	inner     ports.SessionService
	collector *PrometheusCollector
}

func NewInstrumentedSessionService(inner ports.SessionService, collector *PrometheusCollector) *InstrumentedSessionService {
	return &InstrumentedSessionService{
		inner:     inner,
		collector: collector,
	}
}

var _ ports.SessionService = (*InstrumentedSessionService)(nil)

func (s *InstrumentedSessionService) CreateSession(ctx context.Context, label string, owner domain.UserID) (*domain.PlayerSession, error) {
	ctx, span := tracing.TraceSessionOperation(ctx, "create", "")
	defer span.End()

	session, err := s.inner.CreateSession(ctx, label, owner)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	tracing.AddSpanAttributes(ctx, tracing.SessionIDKey.String(string(session.ID)))
	s.collector.RecordSessionCreated(session.ID)
	return session, nil
}

func (s *InstrumentedSessionService) GetSession(ctx context.Context, id domain.SessionID) (*domain.PlayerSession, error) {
	return s.inner.GetSession(ctx, id)
}

func (s *InstrumentedSessionService) ListSessions(ctx context.Context) ([]*domain.PlayerSession, error) {
	return s.inner.ListSessions(ctx)
}

func (s *InstrumentedSessionService) CloseSession(ctx context.Context, id domain.SessionID) error {
	ctx, span := tracing.TraceSessionOperation(ctx, "close", string(id))
	defer span.End()

	if err := s.inner.CloseSession(ctx, id); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}

	s.collector.RecordSessionClosed(id)
	return nil
}

func (s *InstrumentedSessionService) AttachMedia(ctx context.Context, id domain.SessionID, element ports.MediaElement) error {
	ctx, span := tracing.TraceSessionOperation(ctx, "attach_media", string(id))
	defer span.End()

	if err := s.inner.AttachMedia(ctx, id, element); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}
	return nil
}

func (s *InstrumentedSessionService) AttachEngine(ctx context.Context, id domain.SessionID, engine ports.StreamingEngine) error {
	ctx, span := tracing.TraceSessionOperation(ctx, "attach_engine", string(id))
	defer span.End()

	if err := s.inner.AttachEngine(ctx, id, engine); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}
	return nil
}

func (s *InstrumentedSessionService) DetachMedia(ctx context.Context, id domain.SessionID) error {
	return s.inner.DetachMedia(ctx, id)
}

func (s *InstrumentedSessionService) DetachEngine(ctx context.Context, id domain.SessionID) error {
	return s.inner.DetachEngine(ctx, id)
}

func (s *InstrumentedSessionService) Snapshot(ctx context.Context, id domain.SessionID) (domain.VideoStats, error) {
	return s.inner.Snapshot(ctx, id)
}
