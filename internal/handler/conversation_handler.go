// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/service"
)

// ConversationHandler 处理与对话记录相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetConversations 处理获取当前家长对话记录的请求，登录后用于恢复会话界面。
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	history, err := h.service.GetHistory(c.Request.Context(), user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to retrieve conversation history",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    history,
	})
}
