package timezone

import "time"

// timezoneTable 把前端下拉框的时区标签映射到 IANA 时区名。
var timezoneTable = map[string]string{
	"UTC+8（北京、上海、香港）":  "Asia/Shanghai",
	"UTC+7（曼谷、雅加达）":    "Asia/Bangkok",
	"UTC+9（东京、首尔）":     "Asia/Tokyo",
	"UTC+5:30（新德里、科伦坡）": "Asia/Kolkata",
	"UTC+4（巴库、迪拜）":     "Asia/Dubai",
	"UTC+10（悉尼、墨尔本）":   "Australia/Sydney",
	"UTC+12（奥克兰、斐济）":   "Pacific/Auckland",

	"UTC+0（伦敦、里斯本）": "Europe/London",
	"UTC+1（巴黎、柏林）":  "Europe/Paris",
	"UTC+2（雅典、开罗）":  "Europe/Athens",
	"UTC+3（莫斯科、利雅得）": "Europe/Moscow",

	"UTC-5（纽约、多伦多）":  "America/New_York",
	"UTC-8（洛杉矶、西雅图）": "America/Los_Angeles",
	"UTC-6（芝加哥、墨西哥城）": "America/Chicago",
}

// legacyLabels 把老版本档案中的城市标签归一化为现行的时区标签。
var legacyLabels = map[string]string{
	"北京时间（北京）":   "UTC+8（北京、上海、香港）",
	"东京时间（东京）":   "UTC+9（东京、首尔）",
	"首尔时间（首尔）":   "UTC+9（东京、首尔）",
	"印度时间（新德里）":  "UTC+5:30（新德里、科伦坡）",
	"迪拜时间（迪拜）":   "UTC+4（巴库、迪拜）",
	"伦敦时间（伦敦）":   "UTC+0（伦敦、里斯本）",
	"巴黎时间（巴黎）":   "UTC+1（巴黎、柏林）",
	"柏林时间（柏林）":   "UTC+1（巴黎、柏林）",
	"纽约时间（纽约）":   "UTC-5（纽约、多伦多）",
	"洛杉矶时间（洛杉矶）": "UTC-8（洛杉矶、西雅图）",
	"悉尼时间（悉尼）":   "UTC+10（悉尼、墨尔本）",
	"奥克兰时间（奥克兰）": "UTC+12（奥克兰、斐济）",
}

// Labels 返回所有可选的时区标签，供前端下拉框使用。
func Labels() []string {
	labels := make([]string, 0, len(timezoneTable))
	for label := range timezoneTable {
		labels = append(labels, label)
	}
	return labels
}

// NormalizeLabel 把老格式的标签转换为现行标签，未知标签原样返回。
func NormalizeLabel(label string) string {
	if normalized, ok := legacyLabels[label]; ok {
		return normalized
	}
	return label
}

// TableResolver 通过固定的标签表解析当地时间。
type TableResolver struct {
	now localClock
}

// NewTableResolver 创建一个基于固定时区表的解析器。
func NewTableResolver() *TableResolver {
	return &TableResolver{now: time.Now}
}

// Resolve 实现 Resolver 接口。未知标签与时区数据缺失都按解析失败处理。
func (r *TableResolver) Resolve(label string) (string, int, bool) {
	tzName, ok := timezoneTable[NormalizeLabel(label)]
	if !ok {
		return "", 0, false
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return "", 0, false
	}
	hhmm, hour := formatIn(r.now, loc)
	return hhmm, hour, true
}
