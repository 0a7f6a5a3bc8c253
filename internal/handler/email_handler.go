package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"email-classifier/internal/extract"
	"email-classifier/internal/service"

	"github.com/labstack/echo/v4"
)

type EmailHandler struct {
	emailService service.EmailService
	logger       echo.Logger
}

func NewEmailHandler(emailService service.EmailService, logger echo.Logger) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		logger:       logger,
	}
}

// Root answers with a short description of the API
func (h *EmailHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "API rodando. Use /api/classify_text, /api/classify_file, /api/list_emails",
	})
}

// ClassifyText classifies the email typed into the email_content form field
func (h *EmailHandler) ClassifyText(c echo.Context) error {
	content := c.FormValue("email_content")
	if content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Campo email_content é obrigatório.",
		})
	}

	result, err := h.emailService.ClassifyAndStore(c.Request().Context(), content, map[string]interface{}{
		"source": "text_form",
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Texto muito curto para classificação.",
			})
		}
		h.logger.Error("Failed to classify text:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

// ClassifyFile classifies the text extracted from an uploaded .txt or .pdf file
func (h *EmailHandler) ClassifyFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Arquivo é obrigatório.",
		})
	}

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if !extract.Supported(contentType) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Apenas .txt e .pdf são permitidos.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.fileError(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return h.fileError(c, err)
	}

	text, err := extract.Text(contentType, data)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyText) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Arquivo sem texto extraível.",
			})
		}
		return h.fileError(c, err)
	}

	result, err := h.emailService.ClassifyAndStore(c.Request().Context(), text, map[string]interface{}{
		"source":   "file",
		"filename": fileHeader.Filename,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Texto muito curto para classificação.",
			})
		}
		return h.fileError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ListEmails lists stored emails, optionally restricted to the categoria query parameter
func (h *EmailHandler) ListEmails(c echo.Context) error {
	emails, err := h.emailService.ListEmails(c.Request().Context(), c.QueryParam("categoria"))
	if err != nil {
		h.logger.Error("Failed to list emails:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to list emails",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"emails": emails,
	})
}

func (h *EmailHandler) fileError(c echo.Context, err error) error {
	h.logger.Error("Failed to process file:", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": fmt.Sprintf("Erro ao processar arquivo: %v", err),
	})
}
