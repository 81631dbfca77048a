// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/service"
	"github.com/ShuyangenFrance/AI-kid/internal/timezone"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// 参考聊天记录允许的扩展名。
var allowedChatLogExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
	".pdf":  true,
}

// ProfileHandler 负责子女档案的保存与参考聊天记录上传。
type ProfileHandler struct {
	userService service.UserService
}

// NewProfileHandler 创建一个新的 ProfileHandler 实例。
func NewProfileHandler(userService service.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// SaveProfile 处理保存子女档案的请求。保存会重置记忆与对话记录。
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SaveProfile: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "请先选择性别和年龄段",
		})
		return
	}

	userValue, _ := c.Get("user")
	user := userValue.(*model.User)

	updated, err := h.userService.SaveProfile(c.Request.Context(), user.Username, req)
	if err != nil {
		log.Errorf("SaveProfile: Failed for user '%s', error: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": err.Error(),
		})
		return
	}

	log.Infof("User '%s' saved child profile, nickname: %s", user.Username, updated.Profile.Nickname)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "设置已保存！现在可以开始聊天了",
		"data":    updated.Profile,
	})
}

// UploadChatLog 处理参考聊天记录文件上传。
func (h *ProfileHandler) UploadChatLog(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedChatLogExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的文件类型: " + ext})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取上传文件"})
		return
	}
	defer file.Close()

	userValue, _ := c.Get("user")
	user := userValue.(*model.User)

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.userService.AttachChatLog(c.Request.Context(), user.Username, fileHeader.Filename, file, fileHeader.Size, contentType); err != nil {
		log.Errorf("UploadChatLog: Failed for user '%s', error: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Infof("User '%s' uploaded chat log '%s'", user.Username, fileHeader.Filename)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "参考聊天记录已更新",
	})
}

// GetCityOptions 返回档案页可选的城市/时区标签列表。
func (h *ProfileHandler) GetCityOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    timezone.Labels(),
	})
}
