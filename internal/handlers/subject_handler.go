package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/services"
	"github.com/gradewise/evaluation-service/internal/utils"
)

type SubjectHandler struct {
	subjectService services.SubjectService
	logger         utils.Logger
}

func NewSubjectHandler(subjectService services.SubjectService, logger utils.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjectService: subjectService,
		logger:         logger,
	}
}

func (h *SubjectHandler) GetSubject(c *gin.Context) {
	id := c.Param("id")

	subject, err := h.subjectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrSubjectNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Detail: "Subject not found",
		})
		return
	}

	h.logger.Error("subject request failed", "error", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Detail: "Internal server error",
	})
}
