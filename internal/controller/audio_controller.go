package controller

import (
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAudioController interface {
	RegisterRoutes(r fiber.Router)
	AudioToText(ctx *fiber.Ctx) error
}

type audioController struct {
	transcriptionService service.ITranscriptionService
}

func NewAudioController(transcriptionService service.ITranscriptionService) IAudioController {
	return &audioController{transcriptionService: transcriptionService}
}

func (c *audioController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/audiototext")
	h.Post("/audio-to-text/", c.AudioToText)
}

func (c *audioController) AudioToText(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("audio_file")
	if err != nil {
		return serverutils.BadRequest("audio_file es requerido", err)
	}

	f, err := file.Open()
	if err != nil {
		return serverutils.BadRequest("No se pudo leer el archivo", err)
	}
	defer f.Close()

	res, err := c.transcriptionService.Transcribe(ctx.UserContext(), service.AudioUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Size:        file.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Transcripción realizada con éxito", res))
}
