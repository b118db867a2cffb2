// Package conv 提供类型转换工具，用于简化配置解析中的重复逻辑。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt 将 any 转为 int。
func ToInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// ToInt64 将 any 转为 int64。
func ToInt64(v any) (int64, bool) {
	if i, ok := ToInt(v); ok {
		return int64(i), true
	}
	return 0, false
}

// ConfigGet 从配置 map 中读取指定类型的值，缺失或类型不符时返回默认值。
func ConfigGet[T any](config map[string]any, key string, def T) T {
	if config == nil {
		return def
	}
	raw, ok := config[key]
	if !ok {
		return def
	}
	if v, ok := raw.(T); ok {
		return v
	}
	return def
}

// ConfigGetFloat 从配置 map 中读取浮点值（兼容 yaml 解析出的 int）。
func ConfigGetFloat(config map[string]any, key string, def float64) float64 {
	if config == nil {
		return def
	}
	if v, ok := ToFloat64(config[key]); ok {
		return v
	}
	return def
}

// ConfigGetInt 从配置 map 中读取整数值（兼容 yaml 解析出的 float）。
func ConfigGetInt(config map[string]any, key string, def int) int {
	if config == nil {
		return def
	}
	if v, ok := ToInt(config[key]); ok {
		return v
	}
	return def
}
