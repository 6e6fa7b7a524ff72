package main

import (
	"bitbucket.org/sotavant/quick-swapp/internal/auth"
	"bitbucket.org/sotavant/quick-swapp/internal/inbox"
	"bitbucket.org/sotavant/quick-swapp/internal/logger"
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
)

type app struct {
	inbox *inbox.Service
}

func newApp(s *inbox.Service) *app {
	return &app{inbox: s}
}

func (a *app) startConversation(c *gin.Context) {
	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		a.fail(c, http.StatusBadRequest, err)
		return
	}

	conv, err := a.inbox.StartConversation(c.Request.Context(), auth.UserFrom(c), req.ParticipantID, req.ItemID)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StartConversationResponse{ConversationID: conv})
}

func (a *app) listConversations(c *gin.Context) {
	summaries, err := a.inbox.Conversations(c.Request.Context(), auth.UserFrom(c))
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (a *app) thread(c *gin.Context) {
	conv := models.ConversationID(c.Param("id"))

	msgs, err := a.inbox.Thread(c.Request.Context(), auth.UserFrom(c), conv)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

func (a *app) sendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		a.fail(c, http.StatusBadRequest, err)
		return
	}

	msg, err := a.inbox.Send(c.Request.Context(), auth.UserFrom(c), req.ReceiverID, req.ItemID, req.Body)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (a *app) unread(c *gin.Context) {
	n, err := a.inbox.UnreadTotal(c.Request.Context(), auth.UserFrom(c))
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UnreadResponse{Unread: n})
}

func (a *app) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validation.ErrEmptyMessage),
		errors.Is(err, validation.ErrMessageTooLong),
		errors.Is(err, inbox.ErrSelfConversation),
		errors.Is(err, inbox.ErrInvalidParticipant),
		errors.Is(err, inbox.ErrInvalidItem):
		logger.Log.Debug("rejected request", zap.String("path", c.FullPath()), zap.Error(err))
		a.fail(c, http.StatusBadRequest, err)
	case errors.Is(err, inbox.ErrConversationMissing):
		a.fail(c, http.StatusNotFound, err)
	default:
		logger.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		a.fail(c, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
	}
}

func (a *app) fail(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, models.ErrorResponse{Error: err.Error()})
}
