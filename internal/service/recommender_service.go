package service

import (
	"context"

	"fashion-recommender-be/internal/dto"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/recommend/dialogue"
	"fashion-recommender-be/pkg/recommend/session"
	"fashion-recommender-be/pkg/similarity"
)

type IChatService interface {
	SendTurn(ctx context.Context, sessionID string, request *dto.SendTurnRequest) (*dto.TurnResponse, error)
	Reset(ctx context.Context, sessionID string) (*dto.TurnResponse, error)
	Stats(ctx context.Context) (*dto.ChatStatsResponse, error)
}

type chatService struct {
	orchestrator *dialogue.Orchestrator
	sessions     *session.Manager
}

func NewChatService(orchestrator *dialogue.Orchestrator, sessions *session.Manager) IChatService {
	return &chatService{orchestrator: orchestrator, sessions: sessions}
}

func (s *chatService) SendTurn(ctx context.Context, sessionID string, request *dto.SendTurnRequest) (*dto.TurnResponse, error) {
	messages := s.orchestrator.HandleTurn(ctx, sessionID, request.Text)
	return &dto.TurnResponse{SessionId: sessionID, Messages: messages}, nil
}

// Reset goes through the orchestrator so the reset is serialized with turns
// and announced like any other.
func (s *chatService) Reset(ctx context.Context, sessionID string) (*dto.TurnResponse, error) {
	messages := s.orchestrator.HandleTurn(ctx, sessionID, "/reset")
	return &dto.TurnResponse{SessionId: sessionID, Messages: messages}, nil
}

func (s *chatService) Stats(ctx context.Context) (*dto.ChatStatsResponse, error) {
	return &dto.ChatStatsResponse{ActiveSessions: s.sessions.Count()}, nil
}

type IIndexService interface {
	Status(ctx context.Context) (*dto.IndexStatusResponse, error)
	Rebuild(ctx context.Context) (*dto.IndexStatusResponse, error)
}

type indexService struct {
	holder     *similarity.Holder
	vocabulary IVocabularyService
	logger     logger.ILogger
}

func NewIndexService(holder *similarity.Holder, vocabulary IVocabularyService, log logger.ILogger) IIndexService {
	return &indexService{holder: holder, vocabulary: vocabulary, logger: log}
}

func (s *indexService) Status(ctx context.Context) (*dto.IndexStatusResponse, error) {
	return toIndexStatus(s.holder.Status()), nil
}

// Rebuild reloads the whole catalog. On failure the previous index stays live
// and the error is returned alongside its status.
func (s *indexService) Rebuild(ctx context.Context) (*dto.IndexStatusResponse, error) {
	s.vocabulary.Invalidate(ctx)
	if err := s.holder.Rebuild(ctx); err != nil {
		s.logger.Error("SIMILARITY", "Manual rebuild failed", map[string]interface{}{"error": err.Error()})
		return toIndexStatus(s.holder.Status()), err
	}
	return toIndexStatus(s.holder.Status()), nil
}

func toIndexStatus(st similarity.Status) *dto.IndexStatusResponse {
	return &dto.IndexStatusResponse{
		Ready:     st.Ready,
		Items:     st.Items,
		Links:     st.Links,
		Dimension: st.Dimension,
		BuiltAt:   st.BuiltAt,
		LastError: st.LastError,
	}
}
