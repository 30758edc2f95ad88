package http

import (
	"context"
	"net/http"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"
	"playhud/pkg/errors"
	"playhud/pkg/validation"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService  ports.SessionService
	playbackService ports.PlaybackService
	trackService    ports.TrackService
}

func NewSessionHandler(
	sessionService ports.SessionService,
	playbackService ports.PlaybackService,
	trackService ports.TrackService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		playbackService: playbackService,
		trackService:    trackService,
	}
}

func (h *SessionHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.CloseSession)
		api.GET("/sessions/:id/stats", h.GetStats)

		// Playback control endpoints
		api.POST("/sessions/:id/play", h.Play)
		api.POST("/sessions/:id/pause", h.Pause)
		api.POST("/sessions/:id/toggle", h.TogglePlay)
		api.POST("/sessions/:id/seek", h.Seek)
		api.POST("/sessions/:id/seek-by", h.SeekBy)
		api.POST("/sessions/:id/volume", h.SetVolume)
		api.POST("/sessions/:id/mute", h.ToggleMute)
		api.POST("/sessions/:id/rate", h.SetRate)
		api.POST("/sessions/:id/fullscreen", h.RequestFullscreen)
		api.POST("/sessions/:id/pip", h.EnterPictureInPicture)

		// Track selection endpoints
		api.GET("/sessions/:id/levels", h.Levels)
		api.POST("/sessions/:id/levels", h.SetLevel)
		api.GET("/sessions/:id/audio", h.AudioTracks)
		api.POST("/sessions/:id/audio", h.SetAudioTrack)
		api.GET("/sessions/:id/subtitles", h.SubtitleTracks)
		api.POST("/sessions/:id/subtitles", h.SetSubtitleTrack)
	}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		Label string `json:"label" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := validation.ValidateSessionLabel(req.Label); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	// User ID is already in context from AuthMiddleware
	owner := domain.UserID(c.GetString("user_id"))

	session, err := h.sessionService.CreateSession(c.Request.Context(), req.Label, owner)
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
	})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	session, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *SessionHandler) CloseSession(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	if err := h.sessionService.CloseSession(c.Request.Context(), sessionID); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "closed",
	})
}

func (h *SessionHandler) GetStats(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	stats, err := h.sessionService.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// Playback control endpoints

func (h *SessionHandler) Play(c *gin.Context) {
	h.playbackAction(c, h.playbackService.Play, "playing")
}

func (h *SessionHandler) Pause(c *gin.Context) {
	h.playbackAction(c, h.playbackService.Pause, "paused")
}

func (h *SessionHandler) TogglePlay(c *gin.Context) {
	h.playbackAction(c, h.playbackService.TogglePlay, "toggled")
}

func (h *SessionHandler) Seek(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		Position float64 `json:"position"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := h.playbackService.Seek(c.Request.Context(), sessionID, req.Position); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "seeked",
	})
}

func (h *SessionHandler) SeekBy(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		Delta float64 `json:"delta" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := h.playbackService.SeekBy(c.Request.Context(), sessionID, req.Delta); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "seeked",
	})
}

func (h *SessionHandler) SetVolume(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		Level float64 `json:"level"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := h.playbackService.SetVolume(c.Request.Context(), sessionID, req.Level); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "volume_set",
	})
}

func (h *SessionHandler) ToggleMute(c *gin.Context) {
	h.playbackAction(c, h.playbackService.ToggleMute, "mute_toggled")
}

func (h *SessionHandler) SetRate(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		Rate float64 `json:"rate" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := validation.ValidatePlaybackRate(req.Rate); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.playbackService.SetRate(c.Request.Context(), sessionID, req.Rate); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "rate_set",
	})
}

func (h *SessionHandler) RequestFullscreen(c *gin.Context) {
	h.playbackAction(c, h.playbackService.RequestFullscreen, "fullscreen_requested")
}

func (h *SessionHandler) EnterPictureInPicture(c *gin.Context) {
	h.playbackAction(c, h.playbackService.EnterPictureInPicture, "pip_requested")
}

// Track selection endpoints

func (h *SessionHandler) Levels(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	levels, current, err := h.trackService.Levels(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"levels":  levels,
		"current": current,
	})
}

func (h *SessionHandler) SetLevel(c *gin.Context) {
	h.trackAction(c, h.trackService.SetLevel, "level_set")
}

func (h *SessionHandler) AudioTracks(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	tracks, current, err := h.trackService.AudioTracks(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks":  tracks,
		"current": current,
	})
}

func (h *SessionHandler) SetAudioTrack(c *gin.Context) {
	h.trackAction(c, h.trackService.SetAudioTrack, "audio_track_set")
}

func (h *SessionHandler) SubtitleTracks(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	tracks, current, err := h.trackService.SubtitleTracks(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks":  tracks,
		"current": current,
	})
}

func (h *SessionHandler) SetSubtitleTrack(c *gin.Context) {
	h.trackAction(c, h.trackService.SetSubtitleTrack, "subtitle_track_set")
}

func (h *SessionHandler) playbackAction(
	c *gin.Context,
	action func(ctx context.Context, id domain.SessionID) error,
	status string,
) {
	sessionID := domain.SessionID(c.Param("id"))

	if err := action(c.Request.Context(), sessionID); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
	})
}

func (h *SessionHandler) trackAction(
	c *gin.Context,
	action func(ctx context.Context, id domain.SessionID, index int) error,
	status string,
) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		Index *int `json:"index" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := action(c.Request.Context(), sessionID, *req.Index); err != nil {
		c.Error(errors.FromDomain(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
	})
}
