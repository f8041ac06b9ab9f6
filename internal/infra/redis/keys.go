package redis

// Redis Key 定义与构造器
// 统一管理业务使用的 Redis Key，避免散落的魔法字符串，便于统一维护与变更。

const (
	// PrefixRoundInfo：拼团局信息缓存，用于查询接口快速返回
	PrefixRoundInfo = "gb:round:"
	// PrefixSettleResult：结算结果缓存（开奖+分红视图 JSON）
	PrefixSettleResult = "gb:settle:result:"
	// PrefixPlatformNonce：平台签名防重放 Nonce
	PrefixPlatformNonce = "gb:nonce:"
)

// RoundInfoKey：构造拼团局信息缓存 Key。形如：gb:round:{round_id}
func RoundInfoKey(roundID string) string { return PrefixRoundInfo + roundID }

// SettleResultKey：构造结算结果缓存 Key。形如：gb:settle:result:{round_id}
func SettleResultKey(roundID string) string { return PrefixSettleResult + roundID }

// PlatformNonceKey：构造 Nonce Key。形如：gb:nonce:{app_key}:{nonce}
func PlatformNonceKey(appKey, nonce string) string {
	return PrefixPlatformNonce + appKey + ":" + nonce
}
