package api

import (
    "mediaq/config"

    "github.com/gin-gonic/gin"
)

func SetupRouter(records RecordReader, cfg *config.Config) *gin.Engine {
    r := gin.Default()
    h := NewHandler(records)

    // Health check
    r.GET("/health", func(c *gin.Context) {
        c.JSON(200, gin.H{"status": "ok"})
    })

    v1 := r.Group("/api/v1")
    v1.Use(AuthMiddleware(cfg))
    {
        // Read-only status queries; jobs are created by the upload
        // collaborator, never through this service.
        v1.GET("/jobs", h.handleListJobs)
        v1.GET("/jobs/:jobId", h.handleGetJobStatus)
    }
    return r
}
