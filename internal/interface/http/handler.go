package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-kb/internal/domain/faq"
	"github.com/yanqian/faq-kb/internal/domain/media"
	apperrors "github.com/yanqian/faq-kb/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc   faq.Service
	mediaSvc media.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, mediaSvc media.Service, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:   faqSvc,
		mediaSvc: mediaSvc,
		logger:   logger.With("component", "http.handler"),
	}
}

// ListQuestions returns every stored question.
func (h *Handler) ListQuestions(c *gin.Context) {
	records, err := h.faqSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": records})
}

// ListByDepartment returns the questions of one department.
func (h *Handler) ListByDepartment(c *gin.Context) {
	records, err := h.faqSvc.ListByDepartment(c.Request.Context(), c.Param("department"))
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": records})
}

// SearchQuestions runs a free-text search across the stored questions.
func (h *Handler) SearchQuestions(c *gin.Context) {
	records, err := h.faqSvc.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": records})
}

// CreateQuestion validates and stores a new question.
func (h *Handler) CreateQuestion(c *gin.Context) {
	var req faq.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.faqSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Question added successfully!",
		"question": record,
	})
}

// UpdateQuestion applies a partial update.
func (h *Handler) UpdateQuestion(c *gin.Context) {
	var req faq.UpdateRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		// A missing body is an update with no fields.
		req = faq.UpdateRequest{}
	} else if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	record, err := h.faqSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Question updated successfully.",
		"updatedQuestion": record,
	})
}

// DeleteQuestion removes a question by id.
func (h *Handler) DeleteQuestion(c *gin.Context) {
	if _, err := h.faqSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully."})
}

// UploadImage stores an answer image and returns its public URL.
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}
	if err := h.mediaSvc.CheckSize(fileHeader.Size); err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unable to open file", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unable to read file", err))
		return
	}

	resp, err := h.mediaSvc.UploadImage(c.Request.Context(), media.UploadRequest{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ServeImage streams a previously uploaded image.
func (h *Handler) ServeImage(c *gin.Context) {
	obj, err := h.mediaSvc.OpenImage(c.Request.Context(), c.Param("key"))
	if err != nil {
		abortWithError(c, toHTTPError(err))
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, obj.Size, obj.MimeType, obj.Body, nil)
}

// toHTTPError maps domain error codes onto transport statuses.
func toHTTPError(err error) *HTTPError {
	message := apperrors.MessageOf(err)
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", message, err)
	case apperrors.CodeNoFields:
		return NewHTTPError(http.StatusBadRequest, "no_fields", message, err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, "not_found", message, err)
	case apperrors.CodeNoResults:
		return NewHTTPError(http.StatusNotFound, "no_results", message, err)
	case apperrors.CodePersistenceError, apperrors.CodeStorageError:
		return NewHTTPError(http.StatusInternalServerError, "internal_error", message, err)
	default:
		return asHTTPError(err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
