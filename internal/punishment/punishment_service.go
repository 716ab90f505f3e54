package punishment

import (
	"errors"
	"net/http"
	"net/netip"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/leighmacdonald/mcbans/internal/httphelper"
	"github.com/leighmacdonald/mcbans/pkg/datetime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var issuedCounter = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "mcbans_punishment_issued_total",
	Help: "Total punishments issued by kind",
}, []string{"kind"})

type punishmentHandler struct {
	punishments *Usecase
	enforcer    *Enforcer
}

func NewHandler(engine *gin.Engine, punishments *Usecase, enforcer *Enforcer) {
	handler := punishmentHandler{
		punishments: punishments,
		enforcer:    enforcer,
	}

	engine.POST("/api/punishment", handler.onIssue())
	engine.DELETE("/api/punishment/:player_name", handler.onRevoke())
	engine.GET("/api/punishment/:player_name/active", handler.onActive())
	engine.GET("/api/punishment/:player_name/history", handler.onHistory())
	engine.GET("/api/stats/recent", handler.onRecentCount())
	engine.POST("/api/login_check", handler.onLoginCheck())
	engine.POST("/api/chat_check", handler.onChatCheck())
}

type issueRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
	PlayerUUID string `json:"player_uuid"`
	PlayerIP   string `json:"player_ip"`
	Kind       string `json:"kind" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	Operator   string `json:"operator" binding:"required"`
	Duration   string `json:"duration"`
	Silent     bool   `json:"silent"`
}

type issueResponse struct {
	Punishment Punishment `json:"punishment"`
	// Broadcast is the staff-facing message the caller may relay. Empty for
	// silent punishments.
	Broadcast string `json:"broadcast"`
}

func (h punishmentHandler) onIssue() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[issueRequest](ctx)
		if !ok {
			return
		}

		kind, errKind := KindFromString(req.Kind)
		if errKind != nil {
			httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusBadRequest, errKind,
				"Unknown punishment type: %s", req.Kind))

			return
		}

		var duration time.Duration
		if req.Duration != "" {
			parsed, errParse := datetime.ParseDuration(req.Duration)
			if errParse != nil {
				httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusBadRequest, errParse,
					"Invalid duration format: %s", req.Duration))

				return
			}

			if parsed <= 0 {
				httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusBadRequest, datetime.ErrInvalidDuration,
					"Duration must be positive: %s", req.Duration))

				return
			}

			duration = parsed
		}

		opts := Opts{
			PlayerName: req.PlayerName,
			Kind:       kind,
			Reason:     req.Reason,
			Operator:   req.Operator,
			Duration:   duration,
			Silent:     req.Silent,
		}

		if req.PlayerUUID != "" {
			playerUUID, errUUID := uuid.FromString(req.PlayerUUID)
			if errUUID != nil {
				httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusBadRequest, errUUID,
					"Invalid player uuid: %s", req.PlayerUUID))

				return
			}

			opts.PlayerUUID = uuid.NullUUID{UUID: playerUUID, Valid: true}
		}

		if req.PlayerIP != "" {
			addr, errAddr := netip.ParseAddr(req.PlayerIP)
			if errAddr != nil {
				httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusBadRequest, errAddr,
					"Invalid player ip: %s", req.PlayerIP))

				return
			}

			opts.PlayerIP = &addr
		}

		// The engine write path appends unconditionally, so the duplicate
		// live-punishment check lives here with the command handling.
		if conflict, errConflict := h.duplicateActive(ctx, req.PlayerName, kind); errConflict != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errConflict))

			return
		} else if conflict {
			httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusConflict, httphelper.ErrBadRequest,
				"%s already has an active %s", req.PlayerName, kind))

			return
		}

		record, errIssue := h.punishments.Issue(ctx, opts)
		if errIssue != nil {
			if isValidationErr(errIssue) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errIssue))
			} else {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errIssue))
			}

			return
		}

		issuedCounter.WithLabelValues(record.Kind.String()).Inc()

		resp := issueResponse{Punishment: record}
		if !record.Silent {
			resp.Broadcast = record.BroadcastText()
		}

		ctx.JSON(http.StatusCreated, resp)
	}
}

func (h punishmentHandler) duplicateActive(ctx *gin.Context, playerName string, kind Kind) (bool, error) {
	switch kind {
	case Ban, TempBan:
		return h.punishments.IsBanned(ctx, playerName)
	case Mute, TempMute:
		return h.punishments.IsMuted(ctx, playerName)
	case IPBan, TempIPBan, Warn, TempWarn, Note, Kick:
		return false, nil
	default:
		return false, nil
	}
}

func isValidationErr(err error) bool {
	for _, sentinel := range []error{
		ErrNameEmpty, ErrReasonEmpty, ErrInvalidDuration,
		ErrDurationRequired, ErrDurationNotAllowed, ErrInvalidKind,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}

func (h punishmentHandler) onRevoke() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		playerName, ok := httphelper.GetStringParam(ctx, "player_name")
		if !ok {
			return
		}

		group, errGroup := GroupFromString(ctx.DefaultQuery("group", "ban"))
		if errGroup != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errGroup))

			return
		}

		revoked, errRevoke := h.punishments.Revoke(ctx, playerName, group)
		if errRevoke != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRevoke))

			return
		}

		// revoked == 0 means nothing was live. A normal outcome, not a 404.
		ctx.JSON(http.StatusOK, gin.H{"revoked": revoked})
	}
}

func (h punishmentHandler) onActive() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		playerName, ok := httphelper.GetStringParam(ctx, "player_name")
		if !ok {
			return
		}

		records, errRecords := h.punishments.Active(ctx, playerName)
		if errRecords != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRecords))

			return
		}

		ctx.JSON(http.StatusOK, records)
	}
}

func (h punishmentHandler) onHistory() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		playerName, ok := httphelper.GetStringParam(ctx, "player_name")
		if !ok {
			return
		}

		page, ok := httphelper.GetIntQuery(ctx, "page", 0)
		if !ok {
			return
		}

		records, errRecords := h.punishments.History(ctx, playerName, uint64(page))
		if errRecords != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRecords))

			return
		}

		ctx.JSON(http.StatusOK, records)
	}
}

func (h punishmentHandler) onRecentCount() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		group, errGroup := GroupFromString(ctx.DefaultQuery("group", "ban"))
		if errGroup != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errGroup))

			return
		}

		since, errSince := time.Parse(time.RFC3339, ctx.Query("since"))
		if errSince != nil {
			httphelper.SetError(ctx, httphelper.NewAPIErrorf(http.StatusBadRequest, errSince,
				"since must be RFC3339"))

			return
		}

		count, errCount := h.punishments.CountSince(ctx, group, since)
		if errCount != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errCount))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"count": count})
	}
}

type checkRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
}

func (h punishmentHandler) onLoginCheck() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[checkRequest](ctx)
		if !ok {
			return
		}

		decision, errDecision := h.enforcer.OnLoginAttempt(ctx, req.PlayerName)
		if errDecision != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errDecision))

			return
		}

		ctx.JSON(http.StatusOK, decision)
	}
}

func (h punishmentHandler) onChatCheck() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[checkRequest](ctx)
		if !ok {
			return
		}

		decision, errDecision := h.enforcer.OnChatAttempt(ctx, req.PlayerName)
		if errDecision != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errDecision))

			return
		}

		ctx.JSON(http.StatusOK, decision)
	}
}
