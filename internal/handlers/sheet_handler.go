package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
	"github.com/gradewise/evaluation-service/internal/services"
	"github.com/gradewise/evaluation-service/internal/utils"
)

type SheetHandler struct {
	sheetService services.SheetService
	logger       utils.Logger
}

func NewSheetHandler(sheetService services.SheetService, logger utils.Logger) *SheetHandler {
	return &SheetHandler{
		sheetService: sheetService,
		logger:       logger,
	}
}

// GetSheet returns one answer sheet with its persisted grading state.
func (h *SheetHandler) GetSheet(c *gin.Context) {
	id := c.Param("id")

	sheet, err := h.sheetService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// ListSheets returns sheets filtered by teacher and/or student.
func (h *SheetHandler) ListSheets(c *gin.Context) {
	var filters repositories.SheetFilters

	if teacherID := c.Query("teacher_id"); teacherID != "" {
		filters.TeacherID = &teacherID
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if status := c.Query("status"); status != "" {
		s := models.SheetStatus(status)
		filters.Status = &s
	}

	sheets, err := h.sheetService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheets)
}

// UpdateGrade persists the full grading state for a sheet: per-question
// marks, annotations and remarks. The payload is a complete overwrite.
func (h *SheetHandler) UpdateGrade(c *gin.Context) {
	id := c.Param("id")

	var sub models.GradeSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Detail: "Invalid request payload",
		})
		return
	}

	h.logger.Info("grade update received",
		"sheet_id", id,
		"question_marks", len(sub.QuestionMarks),
		"annotations", len(sub.Annotations))

	sheet, err := h.sheetService.UpdateGrade(c.Request.Context(), id, &sub)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

func (h *SheetHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Detail: "Validation failed",
			Errors: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSheetNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Detail: "Answer sheet not found",
		})
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Detail: "Exam not found",
		})
	default:
		h.logger.Error("sheet request failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Detail: "Internal server error",
		})
	}
}
