package service

import (
	"context"
	"errors"

	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/pkg/document"
)

// DocumentAnalyzer validates one uploaded certificate.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, up document.Upload) (*document.Result, error)
}

type IAnalysisService interface {
	AnalyzeFile(ctx context.Context, up document.Upload) (*dto.AnalyzeFileResponse, error)
}

type analysisService struct {
	analyzer DocumentAnalyzer
	logger   logger.ILogger
}

func NewAnalysisService(analyzer DocumentAnalyzer, log logger.ILogger) IAnalysisService {
	return &analysisService{analyzer: analyzer, logger: log}
}

func (s *analysisService) AnalyzeFile(ctx context.Context, up document.Upload) (*dto.AnalyzeFileResponse, error) {
	res, err := s.analyzer.Analyze(ctx, up)
	if err != nil {
		return nil, s.mapError(up.SessionID, err)
	}
	return &dto.AnalyzeFileResponse{
		Analysis:       res.Analysis,
		Summary:        res.Summary,
		Certificate:    res.Certificate,
		Escalated:      res.Escalated,
		FullName:       res.FullName,
		DateInit:       res.DateInit,
		DateEnd:        res.DateEnd,
		Identification: res.Identification,
	}, nil
}

func (s *analysisService) mapError(sessionID string, err error) error {
	switch {
	case errors.Is(err, document.ErrFileTooLarge):
		return serverutils.TooLarge("El archivo es demasiado grande. Máximo 10 MB permitido.", err)
	case errors.Is(err, document.ErrUnsupportedFormat):
		return serverutils.BadRequest("Formato no soportado. Use PNG, JPG, GIF o PDF.", err)
	case errors.Is(err, document.ErrEmptyPDF):
		return serverutils.BadRequest("El PDF está vacío o no tiene páginas.", err)
	case errors.Is(err, document.ErrUnreadablePDF):
		return serverutils.BadRequest("No se pudo leer el PDF.", err)
	case errors.Is(err, document.ErrScannedPDF):
		return serverutils.Unprocessable("El PDF no contiene texto extraíble. Sube una imagen del certificado.", err)
	}
	s.logger.Error("AnalysisService", "Document analysis failed", map[string]interface{}{
		"session_id": sessionID,
		"error":      err.Error(),
	})
	return serverutils.Internal("Error al analizar el archivo", err)
}
