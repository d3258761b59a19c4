package routes

import (
	"net/http"

	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"
	"document-qa-platform/internal/queue"
	"document-qa-platform/internal/vectorindex"
	"document-qa-platform/middleware"
	"document-qa-platform/models"
	"document-qa-platform/services"
	"document-qa-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// SetupQARoutes registers the question-answering API. queueClient may be nil
// when background pre-indexing is disabled.
func SetupQARoutes(router *gin.Engine, cfg *config.Config, pipeline *services.Pipeline, index *vectorindex.Index, queueClient *asynq.Client) {
	api := router.Group("/api/v1")
	api.Use(middleware.RequireBearer(cfg))

	api.POST("/qa/run", func(c *gin.Context) {
		var req models.RunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		logger.Info("Processing QA request", "questions", len(req.Questions))

		answers, err := pipeline.Run(c.Request.Context(), req.Documents, req.Questions)
		if err != nil {
			// Pre-fan-out failure: still a well-formed body, one explanatory
			// entry describing what went wrong.
			logger.Error("QA request failed before fan-out", "error", err)
			c.JSON(http.StatusInternalServerError, models.RunResponse{
				Answers: []models.AnswerItem{{
					Answer: "Request failed: " + err.Error(),
					Score:  0,
				}},
			})
			return
		}

		logger.Info("QA request completed", "answers", len(answers))
		c.JSON(http.StatusOK, models.RunResponse{Answers: answers})
	})

	api.POST("/qa/documents", func(c *gin.Context) {
		if queueClient == nil {
			utils.RespondWithError(c, http.StatusServiceUnavailable, "queue_unavailable",
				"Background indexing is not configured", nil)
			return
		}

		var req models.IndexRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		task, err := queue.NewIndexDocumentTask(req.Documents)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create indexing task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue indexing task", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"task_id": info.ID,
			"queue":   info.Queue,
			"state":   "queued",
		})
	})

	api.GET("/qa/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, index.Stats())
	})
}
