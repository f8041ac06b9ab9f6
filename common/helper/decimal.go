package helper

import (
	"github.com/shopspring/decimal"
)

var (
	// HundredDecimal 分转元的除数
	HundredDecimal = decimal.NewFromInt(100)
)

// TrimDecimal decimal对像四舍五入到2位小数
func TrimDecimal(val decimal.Decimal) string {
	// 直接使用 StringFixed(2) 进行四舍五入到2位小数
	// 这样可以避免截断导致的精度丢失问题
	return val.StringFixed(2)
}

// MinorUnitsToDisplay 将最小货币单位(分)格式化为两位小数的金额字符串
// 内部账务一律用 int64 分，展示层才转字符串
func MinorUnitsToDisplay(units int64) string {
	return decimal.NewFromInt(units).Div(HundredDecimal).StringFixed(2)
}
