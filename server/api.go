package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SalieeriW/FIB-NETFLIX/pkg/analysis"
	"github.com/SalieeriW/FIB-NETFLIX/repository"
	"github.com/SalieeriW/FIB-NETFLIX/service"
)

// addRoutes wires the upward surface: submit/retry triggers, status polling,
// view counting, and a passage search proxy. Submission is fire-and-forget;
// callers poll status afterwards.
func addRoutes(r *gin.Engine, repo repository.Repository, transcode service.TranscodeService, course service.CourseService, client *analysis.Client) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.POST("/videos/:id/transcode", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		transcode.Submit(id)
		c.JSON(http.StatusAccepted, gin.H{"id": id, "submitted": true})
	})

	r.GET("/videos/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		video, err := repo.FindVideoByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		if err := repo.IncrementVideoViews(c.Request.Context(), id); err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Int64("video_id", id).Msg("failed to increment views")
		}
		c.JSON(http.StatusOK, video)
	})

	r.GET("/videos/:id/status", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		video, err := repo.FindVideoByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": video.ID, "status": video.Status, "processed_path": video.ProcessedPath})
	})

	r.POST("/courses/:id/process", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var body struct {
			Language string `json:"language"`
		}
		_ = c.ShouldBindJSON(&body)
		course.Submit(id, body.Language)
		c.JSON(http.StatusAccepted, gin.H{"id": id, "submitted": true})
	})

	r.GET("/courses/:id/status", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		courseRow, err := repo.FindCourseByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": courseRow.ID, "status": courseRow.Status, "detected_languages": courseRow.DetectedLanguages})
	})

	r.GET("/courses/:id/transcript", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		transcript, err := repo.FindTranscriptByCourseID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "transcript not found"})
			return
		}
		c.JSON(http.StatusOK, transcript)
	})

	r.GET("/courses/:id/notes", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		notes, err := repo.FindNotesByCourseID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "notes not found"})
			return
		}
		c.JSON(http.StatusOK, notes)
	})

	r.GET("/courses/:id/search", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		query := c.Query("query")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		nResults, err := strconv.Atoi(c.DefaultQuery("n_results", "5"))
		if err != nil || nResults < 1 {
			nResults = 5
		}

		result, err := client.Search(c.Request.Context(), id, query, nResults, c.Query("language_filter"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
