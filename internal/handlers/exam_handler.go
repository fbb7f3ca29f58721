package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/services"
	"github.com/gradewise/evaluation-service/internal/utils"
)

type ExamHandler struct {
	examService services.ExamService
	logger      utils.Logger
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		logger:      logger,
	}
}

// GetExam returns an exam with its question layout.
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := c.Param("id")

	exam, err := h.examService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrExamNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Detail: "Exam not found",
		})
		return
	}

	h.logger.Error("exam request failed", "error", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Detail: "Internal server error",
	})
}
