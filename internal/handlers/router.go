package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradewise/evaluation-service/internal/services"
	"github.com/gradewise/evaluation-service/internal/utils"
)

type HandlerManager struct {
	sheetHandler   *SheetHandler
	examHandler    *ExamHandler
	subjectHandler *SubjectHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		sheetHandler:   NewSheetHandler(serviceManager.Sheet(), logger),
		examHandler:    NewExamHandler(serviceManager.Exam(), logger),
		subjectHandler: NewSubjectHandler(serviceManager.Subject(), logger),
	}
}

// SetupRoutes registers the grading API.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		sheets := api.Group("/answer-sheets")
		{
			sheets.GET("", hm.sheetHandler.ListSheets)
			sheets.GET("/:id", hm.sheetHandler.GetSheet)
			sheets.PUT("/:id/grade", hm.sheetHandler.UpdateGrade)
		}

		api.GET("/exams/:id", hm.examHandler.GetExam)
		api.GET("/subjects/:id", hm.subjectHandler.GetSubject)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "evaluation-service",
		})
	})
}
