package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/pkg/llm"
)

// MaxAudioSize is the largest accepted recording.
const MaxAudioSize = 25 << 20

var audioFormats = map[string]bool{
	"audio/mpeg": true,
	"audio/mp3":  true,
	"audio/wav":  true,
	"audio/m4a":  true,
	"audio/mp4":  true,
	"audio/webm": true,
	"audio/flac": true,
}

type AudioUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ITranscriptionService interface {
	Transcribe(ctx context.Context, up AudioUpload) (*dto.TranscriptionResponse, error)
}

type transcriptionService struct {
	transcriber llm.Transcriber
	logger      logger.ILogger
	now         func() time.Time
}

func NewTranscriptionService(t llm.Transcriber, log logger.ILogger) ITranscriptionService {
	return &transcriptionService{transcriber: t, logger: log, now: time.Now}
}

func (s *transcriptionService) Transcribe(ctx context.Context, up AudioUpload) (*dto.TranscriptionResponse, error) {
	if up.Size > MaxAudioSize {
		return nil, serverutils.TooLarge("El archivo es demasiado grande. Máximo 25 MB permitido.", nil)
	}
	contentType := strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0])
	if !audioFormats[contentType] {
		return nil, serverutils.BadRequest("Formato de audio no soportado. Use MP3, WAV, M4A, MP4, WEBM o FLAC.", nil)
	}

	// the size header can lie; never read more than the limit
	body := io.LimitReader(up.Body, MaxAudioSize+1)
	text, err := s.transcriber.Transcribe(ctx, up.Filename, body)
	if err != nil {
		s.logger.Error("TranscriptionService", "Transcription failed", map[string]interface{}{"error": err.Error()})
		if errors.Is(err, llm.ErrNotSupported) {
			return nil, serverutils.NewAppError(501, "La transcripción no está disponible con el proveedor configurado.", err)
		}
		return nil, serverutils.Internal("Error al procesar el archivo de audio", err)
	}

	return &dto.TranscriptionResponse{
		Transcription: strings.TrimSpace(text),
		Timestamp:     s.now().UTC().Format(time.RFC3339Nano),
	}, nil
}
