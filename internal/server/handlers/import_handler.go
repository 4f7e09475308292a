package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/service/importing"
)

// ImportHandler exposes the bulk-import wizard over HTTP. Each upload opens
// a server-side session that walks upload, preview, configure and result.
type ImportHandler struct {
	orchestrator *importing.Orchestrator
	logger       *zap.Logger
}

func NewImportHandler(orchestrator *importing.Orchestrator, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{orchestrator: orchestrator, logger: logger}
}

// Begin accepts the uploaded file and opens an import session at the
// preview step.
func (h *ImportHandler) Begin(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}

	session, err := h.orchestrator.Begin(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.respondBeginError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *ImportHandler) respondBeginError(c *gin.Context, err error) {
	var missing *importing.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         missing.Error(),
			"missingFields": missing.Fields,
		})
	case errors.Is(err, importing.ErrUnsupportedFileType),
		errors.Is(err, importing.ErrParse),
		errors.Is(err, importing.ErrNoData),
		errors.Is(err, importing.ErrNoCandidates):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, importing.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed opening import session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to open import session"})
	}
}

// Get returns the current state of an import session.
func (h *ImportHandler) Get(c *gin.Context) {
	session, err := h.orchestrator.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "import session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

type commitRequest struct {
	Policy models.DuplicatePolicy `json:"policy"`
}

// Commit advances the session. Depending on the state and duplicate count
// this either lands on the configure step or runs the actual commit.
func (h *ImportHandler) Commit(c *gin.Context) {
	var req commitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if req.Policy != "" && !models.ValidDuplicatePolicy(req.Policy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown duplicate policy"})
		return
	}

	session, err := h.orchestrator.Proceed(c.Request.Context(), c.Param("id"), req.Policy)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, session)
	case errors.Is(err, importing.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "import session not found"})
	case errors.Is(err, importing.ErrPolicyRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, importing.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("import commit failed", zap.String("session", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
	}
}

// Back steps the wizard back to the upload step, discarding parsed rows.
func (h *ImportHandler) Back(c *gin.Context) {
	session, err := h.orchestrator.Back(c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, session)
	case errors.Is(err, importing.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "import session not found"})
	case errors.Is(err, importing.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to step back"})
	}
}

// Abandon discards an import session.
func (h *ImportHandler) Abandon(c *gin.Context) {
	h.orchestrator.Abandon(c.Param("id"))
	c.Status(http.StatusNoContent)
}
