package collab

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

const (
	StreamStatusLive    = "live"
	StreamStatusStopped = "stopped"
)

// Streaming manages the external process pushing a room to an RTMP endpoint.
type Streaming interface {
	StartStreaming(ctx context.Context, roomId, url, key string, options map[string]string) (*domain.StreamInfo, error)
	StopStreaming(ctx context.Context, roomId string) error
	GetStreamStatus(ctx context.Context, roomId string) (*domain.StreamInfo, error)
}

// NoopStreaming only keeps the bookkeeping a real streamer would report.
type NoopStreaming struct {
	mu      sync.Mutex
	streams map[string]*domain.StreamInfo
	logger  *logrus.Entry
}

func NewNoopStreaming(logger *logrus.Logger) *NoopStreaming {
	return &NoopStreaming{
		streams: make(map[string]*domain.StreamInfo),
		logger:  logger.WithField("service", "streaming"),
	}
}

func (s *NoopStreaming) StartStreaming(_ context.Context, roomId, url, key string, options map[string]string) (*domain.StreamInfo, error) {
	if url == "" || key == "" {
		return nil, domain.NewValidationFault("stream url and key are required")
	}
	info := &domain.StreamInfo{
		StreamId:  uuid.NewString(),
		Url:       url,
		Status:    StreamStatusLive,
		StartedAt: domain.Now(),
		Options:   options,
	}

	s.mu.Lock()
	s.streams[roomId] = info
	s.mu.Unlock()

	s.logger.WithField("roomId", roomId).Infoln("stream started without a streaming backend")
	return info, nil
}

func (s *NoopStreaming) StopStreaming(_ context.Context, roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streams[roomId]; !ok {
		return domain.NewNotFoundFault("no stream for room %s", roomId)
	}
	delete(s.streams, roomId)
	return nil
}

func (s *NoopStreaming) GetStreamStatus(_ context.Context, roomId string) (*domain.StreamInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.streams[roomId]
	if !ok {
		return &domain.StreamInfo{Status: StreamStatusStopped}, nil
	}
	c := *info
	return &c, nil
}
