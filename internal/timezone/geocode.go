package timezone

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ShuyangenFrance/AI-kid/internal/config"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// GeocodeResolver 通过地理编码服务把自由文本城市名解析为时区，
// 再换算当地时间。用于不限制用户从下拉框选择时区的部署形态。
type GeocodeResolver struct {
	baseURL string
	client  *http.Client
	now     localClock
}

// NewGeocodeResolver 创建一个基于 Open-Meteo 风格地理编码接口的解析器。
func NewGeocodeResolver(cfg config.TimezoneConfig) *GeocodeResolver {
	return &GeocodeResolver{
		baseURL: cfg.GeocodeBaseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		now:     time.Now,
	}
}

// geocodeResponse 是地理编码接口响应中我们关心的部分。
type geocodeResponse struct {
	Results []struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	} `json:"results"`
}

// Resolve 实现 Resolver 接口。网络错误、无结果、未知时区都按解析失败
// 处理并仅记录日志，不向调用方传播错误。
func (r *GeocodeResolver) Resolve(label string) (string, int, bool) {
	if label == "" {
		return "", 0, false
	}

	reqURL := fmt.Sprintf("%s/v1/search?name=%s&count=1&language=zh&format=json",
		r.baseURL, url.QueryEscape(label))
	resp, err := r.client.Get(reqURL)
	if err != nil {
		log.Warnf("地理编码请求失败: city=%s, err=%v", label, err)
		return "", 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("地理编码返回非 200 状态: city=%s, status=%s", label, resp.Status)
		return "", 0, false
	}

	var geo geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		log.Warnf("解析地理编码响应失败: city=%s, err=%v", label, err)
		return "", 0, false
	}
	if len(geo.Results) == 0 || geo.Results[0].Timezone == "" {
		return "", 0, false
	}

	loc, err := time.LoadLocation(geo.Results[0].Timezone)
	if err != nil {
		log.Warnf("未知时区: city=%s, tz=%s", label, geo.Results[0].Timezone)
		return "", 0, false
	}
	hhmm, hour := formatIn(r.now, loc)
	return hhmm, hour, true
}
