package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	constant "github.com/763021701/ttt-plus-plus/adaptation/const"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/ctrl"
	"github.com/763021701/ttt-plus-plus/adaptation/schema"
	"github.com/763021701/ttt-plus-plus/common/errors"
)

func (h *Handler) CreateRun(ctx *gin.Context) {
	var run schema.Run
	if err := run.Bind(ctx); err != nil {
		handleRunnerError(ctx, err, "bind run")
		return
	}

	if err := h.ctrl.CreateRun(&run); err != nil {
		if errors.Is(err, ctrl.ErrQueueFull) {
			ctx.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		handleRunnerError(ctx, err, "create run")
		return
	}

	ctx.JSON(http.StatusCreated, run)
}

// ListCorruptions returns the corruption names runs can be submitted
// against.
func (h *Handler) ListCorruptions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"corruptions": constant.CORRUPTIONS})
}

func (h *Handler) GetRun(ctx *gin.Context) {
	id, err := parseRunID(ctx)
	if err != nil {
		handleRunnerError(ctx, err, "parse run id")
		return
	}

	run, err := h.ctrl.GetRun(id)
	if err != nil {
		handleRunnerError(ctx, err, "get run")
		return
	}

	ctx.JSON(http.StatusOK, run)
}

func (h *Handler) ListRuns(ctx *gin.Context) {
	corruption := ctx.Query("corruption")
	latest := ctx.Query("latest") == "true"

	runs, err := h.ctrl.ListRuns(corruption, latest)
	if err != nil {
		handleRunnerError(ctx, err, "list runs")
		return
	}

	ctx.JSON(http.StatusOK, runs)
}

func (h *Handler) GetRunLog(ctx *gin.Context) {
	id, err := parseRunID(ctx)
	if err != nil {
		handleRunnerError(ctx, err, "parse run id")
		return
	}

	content, err := h.ctrl.GetRunLog(id)
	if err != nil {
		handleRunnerError(ctx, err, "read run log")
		return
	}

	ctx.String(http.StatusOK, content)
}

func (h *Handler) GetRunResult(ctx *gin.Context) {
	id, err := parseRunID(ctx)
	if err != nil {
		handleRunnerError(ctx, err, "parse run id")
		return
	}

	result, err := h.ctrl.GetRunResult(id)
	if err != nil {
		handleRunnerError(ctx, err, "collect run result")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"result": result,
		"stats":  result.Stats(),
	})
}

func parseRunID(ctx *gin.Context) (*uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("runID"))
	if err != nil {
		return nil, err
	}
	return &id, nil
}
