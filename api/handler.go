package api

import (
    "context"
    "errors"
    "net/http"

    "mediaq/job"
    "mediaq/store"

    "github.com/gin-gonic/gin"
)

// RecordReader is the read side of the job record store. The API never
// writes records; the worker that owns a job is its only writer.
type RecordReader interface {
    Get(ctx context.Context, id string) (job.Job, error)
    List(ctx context.Context) ([]job.Job, error)
    Processing(ctx context.Context, id string) (bool, error)
}

type Handler struct {
    records RecordReader
}

func NewHandler(records RecordReader) *Handler {
    return &Handler{records: records}
}

// jobResponse is a record snapshot plus whether the owning worker's
// liveness marker is currently set. An absent marker implies neither
// success nor failure.
type jobResponse struct {
    job.Job
    Live bool `json:"live"`
}

// handleListJobs lists all job records.
func (h *Handler) handleListJobs(c *gin.Context) {
    jobs, err := h.records.List(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs", "details": err.Error()})
        return
    }
    c.JSON(http.StatusOK, jobs)
}

// handleGetJobStatus retrieves the status of a single job.
func (h *Handler) handleGetJobStatus(c *gin.Context) {
    jobID := c.Param("jobId")

    j, err := h.records.Get(c.Request.Context(), jobID)
    if err != nil {
        if errors.Is(err, store.ErrNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
            return
        }
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read job", "details": err.Error()})
        return
    }

    live, err := h.records.Processing(c.Request.Context(), jobID)
    if err != nil {
        live = false
    }

    c.JSON(http.StatusOK, jobResponse{Job: j, Live: live})
}
