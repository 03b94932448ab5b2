package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/services"
)

type ChatController struct {
	chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// GetMessages returns the conversation with ?userId=, oldest first.
func (cc *ChatController) GetMessages(c *gin.Context) {
	messages, err := cc.chat.Conversation(c.Request.Context(), middleware.CurrentActor(c), c.Query("userId"))
	if err != nil {
		respondError(c, err, "chat_controller")
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (cc *ChatController) SendMessage(c *gin.Context) {
	var req services.MessageInput
	if !bindJSON(c, &req) {
		return
	}

	message, err := cc.chat.Send(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		respondError(c, err, "chat_controller")
		return
	}

	c.JSON(http.StatusCreated, message)
}

// MarkRead marks every message from ?userId= to the caller as read.
func (cc *ChatController) MarkRead(c *gin.Context) {
	updated, err := cc.chat.MarkRead(c.Request.Context(), middleware.CurrentActor(c), c.Query("userId"))
	if err != nil {
		respondError(c, err, "chat_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
