package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gb-server/common"
	"gb-server/common/helper"
	"gb-server/internal/config"
)

// 钱包服务客户端：把分红金额入账到用户余额
// 签名方式与平台侧约定一致：HMAC-SHA256(app_key + timestamp + nonce + body, app_secret)

// CreditInput 入账请求
type CreditInput struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	RoundID string `json:"round_id"`
	Amount  int64  `json:"amount"` // 分
	BizKey  string `json:"biz_key"`
	TraceID string `json:"trace_id"`
}

// CreditOutput 入账响应
type CreditOutput struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TxID string `json:"tx_id"`
	} `json:"data"`
}

// QueryOutput 流水查询响应
type QueryOutput struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TxID   string `json:"tx_id"`
		Status string `json:"status"`
	} `json:"data"`
}

// ErrTxNotFound 钱包侧查无此笔入账
var ErrTxNotFound = errors.New("wallet tx not found")

type Client interface {
	// Credit 入账一笔分红，返回钱包流水号。
	// biz_key 用作钱包侧幂等键，重复调用不会重复入账。
	Credit(in CreditInput) (txID string, err error)
	// QueryByBizKey 按业务键查询入账流水；查无返回 ErrTxNotFound。
	// 入账请求超时后用该接口确认是否已实际落账，避免状态悬空。
	QueryByBizKey(bizKey, traceID string) (txID string, err error)
}

// New 按配置构造客户端；base_url 缺失时返回降级客户端（调用必失败，记录保持 pending）
func New() Client {
	cfg := config.GetCurrent()
	if cfg == nil || cfg.Wallet.BaseURL == "" {
		return &disabledClient{}
	}
	timeout := helper.WalletTimeout
	if cfg.Wallet.TimeoutMs > 0 {
		timeout = time.Duration(cfg.Wallet.TimeoutMs) * time.Millisecond
	}
	return &httpClient{
		baseURL:   cfg.Wallet.BaseURL,
		appKey:    cfg.Wallet.AppKey,
		appSecret: cfg.Wallet.AppSecret,
		timeout:   timeout,
	}
}

type httpClient struct {
	baseURL   string
	appKey    string
	appSecret string
	timeout   time.Duration
}

func (c *httpClient) Credit(in CreditInput) (string, error) {
	body, err := common.JsonMarshal(in)
	if err != nil {
		return "", errors.WithStack(err)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	nonce := uuid.NewString()
	headers := map[string]string{
		"Content-Type":   "application/json",
		"X-Platform-Key": c.appKey,
		"X-Timestamp":    ts,
		"X-Nonce":        nonce,
		"X-Signature":    sign(c.appKey, ts, nonce, string(body), c.appSecret),
		"X-Trace-ID":     in.TraceID,
	}

	respBody, status, err := helper.HttpDoTimeoutForWallet(body, "POST", c.baseURL+"/api/wallet/credit", headers, c.timeout)
	if err != nil {
		return "", errors.Wrap(err, "wallet credit request failed")
	}
	if status != 200 {
		return "", errors.Errorf("wallet credit http status %d", status)
	}

	var out CreditOutput
	if err := common.JsonUnmarshal(respBody, &out); err != nil {
		return "", errors.Wrap(err, "wallet credit response decode failed")
	}
	if out.Code != 0 {
		return "", errors.Errorf("wallet credit rejected: code=%d, message=%s", out.Code, out.Message)
	}
	if out.Data.TxID == "" {
		return "", errors.New("wallet credit response missing tx_id")
	}
	return out.Data.TxID, nil
}

func (c *httpClient) QueryByBizKey(bizKey, traceID string) (string, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	nonce := uuid.NewString()
	headers := map[string]string{
		"X-Platform-Key": c.appKey,
		"X-Timestamp":    ts,
		"X-Nonce":        nonce,
		"X-Signature":    sign(c.appKey, ts, nonce, "", c.appSecret),
		"X-Trace-ID":     traceID,
	}

	uri := c.baseURL + "/api/wallet/credit/query?biz_key=" + url.QueryEscape(bizKey)
	respBody, status, err := helper.HttpDoTimeout(nil, "GET", uri, headers, helper.FastTimeout)
	if err != nil {
		return "", errors.Wrap(err, "wallet query request failed")
	}
	if status == 404 {
		return "", ErrTxNotFound
	}
	if status != 200 {
		return "", errors.Errorf("wallet query http status %d", status)
	}

	var out QueryOutput
	if err := common.JsonUnmarshal(respBody, &out); err != nil {
		return "", errors.Wrap(err, "wallet query response decode failed")
	}
	if out.Code == 4004 || out.Data.TxID == "" {
		return "", ErrTxNotFound
	}
	if out.Code != 0 {
		return "", errors.Errorf("wallet query rejected: code=%d, message=%s", out.Code, out.Message)
	}
	return out.Data.TxID, nil
}

// sign 与平台签名算法一致
func sign(appKey, timestamp, nonce, body, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(appKey + timestamp + nonce + body))
	return hex.EncodeToString(h.Sum(nil))
}

// disabledClient 未配置钱包地址时的降级实现
type disabledClient struct{}

func (d *disabledClient) Credit(in CreditInput) (string, error) {
	return "", fmt.Errorf("wallet client not configured, order_id=%s stays pending", in.OrderID)
}

func (d *disabledClient) QueryByBizKey(bizKey, traceID string) (string, error) {
	return "", ErrTxNotFound
}
