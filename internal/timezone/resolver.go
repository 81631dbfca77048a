// Package timezone 把"地区标签"解析为当地时间，供提示词的时间意识段使用。
// 解析失败一律静默降级：调用方得到 ok=false，对应的时间意识行被省略，
// 永远不会把错误暴露给聊天用户。
package timezone

import "time"

// Resolver 是地区标签到当地时间的解析能力。
// 两个实现可互换：固定时区下拉表（TableResolver）与自由文本城市
// 地理编码（GeocodeResolver），由配置决定启用哪一个。
type Resolver interface {
	// Resolve 返回当地时间的 HH:MM 字符串与小时数。
	// 标签无法解析时返回 ok=false，不返回错误。
	Resolve(label string) (hhmm string, hour int, ok bool)
}

// localClock 统一各实现取当前时间的方式，测试中可替换。
type localClock func() time.Time

func formatIn(now localClock, loc *time.Location) (string, int) {
	t := now().In(loc)
	return t.Format("15:04"), t.Hour()
}
