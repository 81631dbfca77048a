// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ShuyangenFrance/AI-kid/internal/service"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// ReportHandler 负责子女侧的周报 WebSocket 连接。
// 子女不持有家长账号的 token，凭妈妈的名字发起查询。
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler 创建一个新的 ReportHandler。
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Handle 处理周报 WebSocket 连接。
// 每收到一条消息（妈妈的名字）就生成一次周报，
// 生成过程中不断推送最新的完整快照。
func (h *ReportHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		parentName := strings.TrimSpace(string(message))
		if parentName == "" {
			h.writeSnapshot(conn, "请输入妈妈的名字")
			continue
		}

		emit := func(report string) {
			h.writeSnapshot(conn, report)
		}

		if err := h.reportService.StreamWeeklyReport(c.Request.Context(), parentName, emit); err != nil {
			if errors.Is(err, service.ErrParentNotFound) {
				h.writeSnapshot(conn, fmt.Sprintf("没有找到 %s 的记录，请确认名字输入正确", parentName))
			} else {
				log.Errorf("生成周报失败: parent=%s, err=%v", parentName, err)
				h.writeSnapshot(conn, "周报生成失败，请稍后重试")
			}
		}

		resp := map[string]interface{}{
			"type":      "completion",
			"status":    "finished",
			"timestamp": time.Now().UnixMilli(),
		}
		b, _ := json.Marshal(resp)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			break
		}
	}
}

// writeSnapshot 推送一份完整的周报快照。
func (h *ReportHandler) writeSnapshot(conn *websocket.Conn, report string) {
	b, _ := json.Marshal(map[string]string{"report": report})
	_ = conn.WriteMessage(websocket.TextMessage, b)
}
