package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leighmacdonald/mcbans/internal/httphelper"
)

type reportHandler struct {
	workflow *Workflow
}

func NewHandler(engine *gin.Engine, workflow *Workflow) {
	handler := reportHandler{workflow: workflow}

	engine.POST("/api/report", handler.onStart())
	engine.POST("/api/report/reason", handler.onSelectReason())
	engine.POST("/api/report/confirm", handler.onConfirm())
	engine.POST("/api/report/cancel", handler.onCancel())
	engine.POST("/api/report/leave", handler.onLeave())
	engine.GET("/api/reports/pending", handler.onPending())
	engine.POST("/api/reports/accept", handler.onAccept())
}

type startRequest struct {
	Reporter string `json:"reporter" binding:"required"`
	Target   string `json:"target" binding:"required"`
}

func (h reportHandler) onStart() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[startRequest](ctx)
		if !ok {
			return
		}

		if errStart := h.workflow.Start(req.Reporter, req.Target); errStart != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errStart))

			return
		}

		// The caller renders the selection UI from this list.
		ctx.JSON(http.StatusCreated, gin.H{"reasons": Reasons})
	}
}

type reasonRequest struct {
	Reporter string `json:"reporter" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

func (h reportHandler) onSelectReason() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[reasonRequest](ctx)
		if !ok {
			return
		}

		if errSelect := h.workflow.SelectReason(req.Reporter, req.Reason); errSelect != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusGone, errSelect))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

type reporterRequest struct {
	Reporter string `json:"reporter" binding:"required"`
}

func (h reportHandler) onConfirm() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[reporterRequest](ctx)
		if !ok {
			return
		}

		record, errConfirm := h.workflow.Confirm(ctx, req.Reporter)
		if errConfirm != nil {
			if errors.Is(errConfirm, ErrSessionClosed) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusGone, errConfirm))
			} else {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errConfirm))
			}

			return
		}

		ctx.JSON(http.StatusCreated, record)
	}
}

func (h reportHandler) onCancel() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[reporterRequest](ctx)
		if !ok {
			return
		}

		if errCancel := h.workflow.Cancel(req.Reporter); errCancel != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusGone, errCancel))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h reportHandler) onLeave() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[reporterRequest](ctx)
		if !ok {
			return
		}

		h.workflow.Disconnect(req.Reporter)

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h reportHandler) onPending() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		records, errRecords := h.workflow.Pending(ctx)
		if errRecords != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRecords))

			return
		}

		ctx.JSON(http.StatusOK, records)
	}
}

type acceptRequest struct {
	Reporter string `json:"reporter" binding:"required"`
	Reported string `json:"reported" binding:"required"`
}

func (h reportHandler) onAccept() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[acceptRequest](ctx)
		if !ok {
			return
		}

		accepted, errAccept := h.workflow.Accept(ctx, req.Reporter, req.Reported)
		if errAccept != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errAccept))

			return
		}

		if accepted == 0 {
			httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusNotFound, httphelper.ErrNotFound,
				"No pending report by %s against %s", req.Reporter, req.Reported))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"accepted": accepted})
	}
}
