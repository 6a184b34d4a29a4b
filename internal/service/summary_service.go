package service

import (
	"context"
	"errors"
	"time"

	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/pkg/summary"
)

type ConversationSummarizer interface {
	Summarize(ctx context.Context, req summary.Request) (*summary.Result, error)
}

type ISummaryService interface {
	Summarize(ctx context.Context, req *dto.SummaryRequest) (*dto.SummaryResponse, error)
}

type summaryService struct {
	summarizer ConversationSummarizer
	logger     logger.ILogger
}

func NewSummaryService(s ConversationSummarizer, log logger.ILogger) ISummaryService {
	return &summaryService{summarizer: s, logger: log}
}

func (s *summaryService) Summarize(ctx context.Context, req *dto.SummaryRequest) (*dto.SummaryResponse, error) {
	res, err := s.summarizer.Summarize(ctx, summary.Request{SessionID: req.SessionID, Conversation: req.Conversation})
	if errors.Is(err, summary.ErrNothingToSummarize) {
		return nil, serverutils.BadRequest("Debes enviar 'session_id' o 'conversation'.", err)
	}
	if err != nil {
		s.logger.Error("SummaryService", "Summary failed", map[string]interface{}{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		return nil, serverutils.Internal("Error al generar el resumen", err)
	}

	out := &dto.SummaryResponse{
		Summary:   res.Summary,
		Timestamp: res.Timestamp.Format(time.RFC3339Nano),
		Message:   "Resumen generado con éxito",
	}
	if res.SessionID != "" {
		out.SessionID = &res.SessionID
	}
	if res.Empty {
		out.Message = "Sin contenido de resumen"
	}
	return out, nil
}
