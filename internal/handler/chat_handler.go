// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ShuyangenFrance/AI-kid/internal/service"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
	"github.com/ShuyangenFrance/AI-kid/pkg/token"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责处理 WebSocket 聊天连接。
type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// Handle 处理一个传入的 WebSocket 聊天连接。
// token 经由路径参数传入，每条文本消息视为妈妈的一轮输入。
func (h *ChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", claims.Username)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		// 每轮都重新加载用户，档案可能在另一个页面里被改过
		user, err := h.userService.GetProfile(claims.Username)
		if err != nil {
			log.Errorf("无法获取用户信息: %v", err)
			h.writeError(conn, "无法获取用户信息")
			break
		}

		if !user.Profile.IsReady() {
			h.writeError(conn, "请先在设置页完成孩子档案")
			continue
		}

		err = h.chatService.StreamTurn(c.Request.Context(), string(message), user, conn)
		if err != nil {
			log.Errorf("处理流式响应失败: %v", err)
			h.writeError(conn, "AI服务暂时不可用，请稍后重试")
		}

		// 每轮结束发送 completion 通知，前端据此解锁输入框
		resp := map[string]interface{}{
			"type":      "completion",
			"status":    "finished",
			"message":   "响应已完成",
			"timestamp": time.Now().UnixMilli(),
			"date":      time.Now().Format("2006-01-02T15:04:05"),
		}
		b, _ := json.Marshal(resp)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			break
		}
	}
}

func (h *ChatHandler) writeError(conn *websocket.Conn, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	_ = conn.WriteMessage(websocket.TextMessage, b)
}
