package handler

import (
	"errors"
	"io"
	"net/http"

	"factreel/internal/dto"
	"factreel/internal/response"
	"factreel/internal/service"
	"factreel/internal/storage"
	"factreel/internal/taskrunner"
	"factreel/internal/types"
	apperrors "factreel/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

func (h *Handler) SubmitRun(c *gin.Context) {
	var req dto.SubmitRunReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	ctx := c.Request.Context()
	record := &types.Run{RunId: service.NewRunId(), Fact: req.Fact, Status: types.RunQueued}
	if err := h.Store.SaveRun(ctx, record); err != nil {
		response.ErrorResponse(c, apperrors.WrapStage(apperrors.StageStorage, apperrors.CodeDBError, "Database error", err))
		return
	}

	if _, err := h.Runner.Submit(service.RunRequest{RunId: record.RunId, Fact: req.Fact}); err != nil {
		record.Status = types.RunFailed
		record.FailReason = err.Error()
		if serr := h.Store.SaveRun(ctx, record); serr != nil {
			h.logger.Warn("mark rejected run", zap.String("run_id", record.RunId), zap.Error(serr))
		}
		code := apperrors.CodeUnknown
		if errors.Is(err, taskrunner.ErrQueueFull) {
			code = apperrors.CodeQueueFull
		}
		response.ErrorStatus(c, http.StatusServiceUnavailable, apperrors.Wrap(code, "Run not accepted", err))
		return
	}

	h.logger.Info("run accepted", zap.String("run_id", record.RunId))
	response.Success(c, dto.SubmitRunResData{RunId: record.RunId})
}

func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.Store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		response.ErrorStatus(c, http.StatusNotFound, apperrors.Wrap(apperrors.CodeNotFound, "Run not found", err))
		return
	}
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Database error", err))
		return
	}
	response.Success(c, h.runData(run))
}

func (h *Handler) ListRuns(c *gin.Context) {
	var req dto.ListRunsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.WrapWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "limit must be between 1 and 200", err))
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultHistoryLimit
	}
	runs, err := h.Store.ListRuns(c.Request.Context(), req.Limit)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Database error", err))
		return
	}
	data := make([]dto.RunResData, len(runs))
	for i := range runs {
		data[i] = h.runData(&runs[i])
	}
	response.Success(c, data)
}

func (h *Handler) runData(run *types.Run) dto.RunResData {
	data := dto.RunResData{
		RunId:        run.RunId,
		Status:       string(run.Status),
		Fact:         run.Fact,
		Narration:    run.Narration,
		OutputPath:   run.OutputPath,
		FailStage:    run.FailStage,
		FailReason:   run.FailReason,
		SegmentCount: run.SegmentCount,
		Duration:     run.Duration,
		CreateTime:   run.CreateTime,
	}
	if run.Status == types.RunSucceeded {
		data.DownloadPath = downloadPathFor(h.VideoRoot, run.OutputPath)
	}
	return data
}
