package service

import (
	"context"
	"time"

	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/pkg/helpdesk/orchestrator"
	"udla-mentor-be/pkg/store"
)

// TurnHandler runs one conversation turn.
type TurnHandler interface {
	Handle(ctx context.Context, turn orchestrator.Turn) (orchestrator.Reply, error)
}

type IChatService interface {
	Chat(ctx context.Context, req *dto.AgentRequest) (*dto.AgentResponse, error)
}

type chatService struct {
	orchestrator TurnHandler
	logger       logger.ILogger
}

func NewChatService(o TurnHandler, log logger.ILogger) IChatService {
	return &chatService{orchestrator: o, logger: log}
}

func (s *chatService) Chat(ctx context.Context, req *dto.AgentRequest) (*dto.AgentResponse, error) {
	reply, err := s.orchestrator.Handle(ctx, orchestrator.Turn{
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		Profile: store.Profile{
			FullName:      req.FullName,
			Nickname:      req.Nickname,
			IDCard:        req.IDCard,
			Career:        req.Career,
			Email:         req.Email,
			StudentGender: req.StudentGender,
			MentorGender:  req.MentorGender,
		},
	})
	if err != nil {
		s.logger.Error("ChatService", "Turn failed", map[string]interface{}{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		return nil, serverutils.Internal("Error al procesar la solicitud", err)
	}

	s.logger.Debug("ChatService", "Turn handled", map[string]interface{}{
		"session_id": req.SessionID,
		"branch":     string(reply.Branch),
		"escalated":  reply.Escalated,
	})

	return &dto.AgentResponse{
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		Response:  reply.Response,
		Timestamp: reply.Timestamp.Format(time.RFC3339Nano),
		Escalated: reply.Escalated,
		Message:   reply.Message,
	}, nil
}
