package routes

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"car-rag-platform/middleware"
	"car-rag-platform/models"
	"car-rag-platform/services"
	"car-rag-platform/utils"
)

// AskRequest is the question payload. Filters are optional and, when set,
// bypass extraction from the query text.
type AskRequest struct {
	Query   string           `json:"query" binding:"required"`
	Filters models.FilterSet `json:"filters,omitempty"`
}

// AskResponse carries the generated answer.
type AskResponse struct {
	Answer    string `json:"answer"`
	Query     string `json:"query"`
	RequestID string `json:"request_id,omitempty"`
	TookMS    int64  `json:"took_ms"`
}

func SetupAskRoutes(router *gin.Engine, pipeline *services.Pipeline) {
	api := router.Group("/api/v1")

	api.POST("/ask", func(c *gin.Context) {
		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if strings.TrimSpace(req.Query) == "" {
			utils.RespondWithBadRequest(c, "Query must not be empty", nil)
			return
		}

		for _, f := range req.Filters {
			if f.Field == "" || f.Value == "" {
				utils.RespondWithBadRequest(c, "Filters require field and value", nil)
				return
			}
			if f.Op != models.OpEquals && f.Op != models.OpContains {
				utils.RespondWithBadRequest(c, "Unsupported filter op", gin.H{"op": f.Op})
				return
			}
		}

		start := time.Now()
		answer, err := pipeline.Answer(c.Request.Context(), req.Query, req.Filters)
		if err != nil {
			var retErr *services.RetrievalError
			if errors.As(err, &retErr) {
				utils.RespondWithError(c, http.StatusBadGateway,
					"retrieval_failed", "Context retrieval failed", nil)
				return
			}
			utils.RespondWithInternalError(c, "Failed to answer query", nil)
			return
		}

		c.JSON(http.StatusOK, AskResponse{
			Answer:    answer,
			Query:     req.Query,
			RequestID: middleware.GetRequestID(c),
			TookMS:    time.Since(start).Milliseconds(),
		})
	})
}
