package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/763021701/ttt-plus-plus/adaptation/internal/ctrl"
	"github.com/763021701/ttt-plus-plus/common/errors"
	"github.com/763021701/ttt-plus-plus/common/log"
)

type Handler struct {
	ctrl   *ctrl.Ctrl
	logger log.Logger
}

func New(ctrl *ctrl.Ctrl, logger log.Logger) *Handler {
	return &Handler{
		ctrl:   ctrl,
		logger: logger,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	group := r.Group("/v1")

	group.POST("/run", h.CreateRun)
	group.GET("/corruptions", h.ListCorruptions)
	group.GET("/run/:runID", h.GetRun)
	group.GET("/runs", h.ListRuns)
	group.GET("/run/:runID/log", h.GetRunLog)
	group.GET("/run/:runID/result", h.GetRunResult)
}

func handleRunnerError(ctx *gin.Context, err error, context string) {
	info := "Runner"
	if context != "" {
		info += (": " + context)
	}
	errors.Response(ctx, errors.Wrap(err, info))
}
