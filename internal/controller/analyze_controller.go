package controller

import (
	"io"
	"mime/multipart"
	"strings"

	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/internal/service"
	"udla-mentor-be/pkg/document"

	"github.com/gofiber/fiber/v2"
)

type IAnalyzeController interface {
	RegisterRoutes(r fiber.Router)
	AnalyzeFile(ctx *fiber.Ctx) error
}

type analyzeController struct {
	analysisService service.IAnalysisService
}

func NewAnalyzeController(analysisService service.IAnalysisService) IAnalyzeController {
	return &analyzeController{analysisService: analysisService}
}

func (c *analyzeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analizeimages")
	h.Post("/analyze-file/", c.AnalyzeFile)
}

func (c *analyzeController) AnalyzeFile(ctx *fiber.Ctx) error {
	sessionID := strings.TrimSpace(ctx.FormValue("session_id"))
	if sessionID == "" {
		return serverutils.BadRequest("session_id es requerido", nil)
	}

	file, err := ctx.FormFile("image_file")
	if err != nil {
		return serverutils.BadRequest("image_file es requerido", err)
	}
	if file.Size > document.MaxUploadSize {
		return serverutils.TooLarge("El archivo es demasiado grande. Máximo 10 MB permitido.", document.ErrFileTooLarge)
	}

	data, err := readFile(file, document.MaxUploadSize)
	if err != nil {
		return serverutils.BadRequest("No se pudo leer el archivo", err)
	}

	res, err := c.analysisService.AnalyzeFile(ctx.UserContext(), document.Upload{
		SessionID:   sessionID,
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Análisis completado", res))
}

// readFile reads at most limit+1 bytes so oversize bodies still fail the size check downstream.
func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}
