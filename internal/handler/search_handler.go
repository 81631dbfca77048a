package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShuyangenFrance/AI-kid/internal/service"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// SearchHandler 处理子女侧的对话检索请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchTurns 是处理对话检索请求的 Gin 处理函数。
func (h *SearchHandler) SearchTurns(c *gin.Context) {
	parentName := c.Query("parentName")
	query := c.Query("query")
	log.Infof("[SearchHandler] 收到对话检索请求, parentName: %s, query: %s", parentName, query)

	if parentName == "" || query == "" {
		log.Warnf("[SearchHandler] 检索请求失败: 参数为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "parentName 和 query 不能为空"})
		return
	}

	results, err := h.searchService.SearchTurns(c.Request.Context(), parentName, query)
	if err != nil {
		if errors.Is(err, service.ErrParentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "没有找到 " + parentName + " 的记录"})
			return
		}
		log.Errorf("[SearchHandler] 检索服务返回错误, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "检索失败"})
		return
	}

	log.Infof("[SearchHandler] 检索成功, query: '%s', 返回 %d 条结果", query, len(results))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": results, "message": "success"})
}
