// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg"
	"github.com/ZSC714725/mediaengine/internal/task"
)

// Handler holds dependencies
type Handler struct {
	store  task.Store
	engine *ffmpeg.Engine
}

// NewHandler creates API handler
func NewHandler(store task.Store, engine *ffmpeg.Engine) *Handler {
	return &Handler{store: store, engine: engine}
}

func errResp(c *gin.Context, code int, msg, detail string) {
	c.JSON(code, ErrorResponse{Code: code, Message: msg, Detail: detail})
}

// Convert POST /api/v1/convert
func (h *Handler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	j, err := h.store.Convert(task.ConvertRequest{
		Input:   req.Input,
		Output:  req.Output,
		Options: req.Options.toOptions(),
	})
	if err != nil {
		if errors.Is(err, ffmpeg.ErrInputNotFound) {
			errResp(c, http.StatusBadRequest, "Input not found", err.Error())
			return
		}
		errResp(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	c.JSON(http.StatusOK, jobToResponse(j))
}

// Metadata POST /api/v1/metadata
func (h *Handler) Metadata(c *gin.Context) {
	h.probeJob(c, h.store.Metadata)
}

// Probe POST /api/v1/probe
func (h *Handler) Probe(c *gin.Context) {
	h.probeJob(c, h.store.Probe)
}

func (h *Handler) probeJob(c *gin.Context, submit func(input string) (*task.Job, error)) {
	var req ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	j, err := submit(req.Input)
	if err != nil {
		if errors.Is(err, ffmpeg.ErrInputNotFound) {
			errResp(c, http.StatusBadRequest, "Input not found", err.Error())
			return
		}
		errResp(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	c.JSON(http.StatusOK, jobToResponse(j))
}

// ListJobs GET /api/v1/jobs
func (h *Handler) ListJobs(c *gin.Context) {
	jobs := h.store.List()
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobToResponse(j))
	}
	c.JSON(http.StatusOK, out)
}

// GetJob GET /api/v1/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	j, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown job ID", err.Error())
		return
	}
	c.JSON(http.StatusOK, jobToResponse(j))
}

// GetReport GET /api/v1/jobs/:id/report
func (h *Handler) GetReport(c *gin.Context) {
	j, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown job ID", err.Error())
		return
	}

	lines := j.Log()
	report := ReportResponse{Log: make([]LineResponse, len(lines))}
	for i, line := range lines {
		report.Log[i] = LineResponse{
			Time:   line.Timestamp.Format("2006-01-02 15:04:05.000"),
			Source: line.Source,
			Data:   line.Data,
		}
	}

	c.JSON(http.StatusOK, report)
}

// CancelJob POST /api/v1/jobs/:id/cancel
func (h *Handler) CancelJob(c *gin.Context) {
	if err := h.store.Cancel(c.Param("id")); err != nil {
		errResp(c, http.StatusNotFound, "Unknown job ID", err.Error())
		return
	}
	c.JSON(http.StatusOK, "OK")
}

// DeleteJob DELETE /api/v1/jobs/:id
func (h *Handler) DeleteJob(c *gin.Context) {
	err := h.store.Delete(c.Param("id"))
	switch {
	case errors.Is(err, task.ErrNotFound):
		errResp(c, http.StatusNotFound, "Unknown job ID", err.Error())
	case errors.Is(err, task.ErrJobRunning):
		errResp(c, http.StatusConflict, "Job still running, cancel it first", err.Error())
	case err != nil:
		errResp(c, http.StatusInternalServerError, "Delete failed", err.Error())
	default:
		c.JSON(http.StatusOK, "OK")
	}
}

// About GET /api/v1/about
func (h *Handler) About(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.About())
}

func jobToResponse(j *task.Job) JobResponse {
	resp := JobResponse{
		ID:        j.ID,
		Kind:      string(j.Kind),
		Input:     j.Input,
		Output:    j.Output,
		Status:    string(j.Status()),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt(),
		Result:    resultResponse(j.Result()),
		Metadata:  j.Metadata(),
	}
	if p, ok := j.Progress(); ok {
		resp.Progress = progressResponse(p)
	}
	resp.Failure, resp.ExitCode = j.Failure()
	resp.CPU, resp.MemoryRSS = j.Usage()
	return resp
}
