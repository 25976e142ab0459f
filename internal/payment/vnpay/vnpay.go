package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Version = "2.1.0"
	Command = "pay"

	// 网关参数里金额统一放大 100 倍传输
	amountScale = 100

	dateLayout           = "20060102150405"
	defaultExpireMinutes = 15
)

var (
	ErrConfigInvalid    = errors.New("vnpay config invalid")
	ErrParamsInvalid    = errors.New("vnpay params invalid")
	ErrSignatureInvalid = errors.New("vnpay signature invalid")
)

// Config VNPay 网关配置
type Config struct {
	TmnCode    string `json:"tmn_code"`    // 商户网站代码
	HashSecret string `json:"hash_secret"` // HMAC 签名密钥
	PayURL     string `json:"pay_url"`     // 支付页地址
	ReturnURL  string `json:"return_url"`  // 浏览器回跳地址
}

// ValidateConfig 校验 VNPay 配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return fmt.Errorf("%w: tmn_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return fmt.Errorf("%w: hash_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		return fmt.Errorf("%w: pay_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ReturnURL) == "" {
		return fmt.Errorf("%w: return_url is required", ErrConfigInvalid)
	}
	return nil
}

// CreateInput 构建支付链接的输入
type CreateInput struct {
	TxnRef        string          // 订单引用号（回调时原样带回）
	Amount        decimal.Decimal // 订单金额（VND）
	OrderInfo     string          // 订单描述
	ClientIP      string          // 下单客户端 IP
	Locale        string          // 页面语言（默认 vn）
	CreateAt      time.Time       // 下单时间（零值取当前时间）
	ExpireMinutes int             // 链接有效期（默认 15 分钟）
}

// BuildPaymentURL 构建带签名的 VNPay 支付跳转链接
func BuildPaymentURL(cfg *Config, input CreateInput) (string, error) {
	if err := ValidateConfig(cfg); err != nil {
		return "", err
	}
	if strings.TrimSpace(input.TxnRef) == "" {
		return "", fmt.Errorf("%w: txn_ref is required", ErrParamsInvalid)
	}
	if !input.Amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", ErrParamsInvalid)
	}
	if strings.TrimSpace(input.ClientIP) == "" {
		input.ClientIP = "127.0.0.1"
	}
	if strings.TrimSpace(input.Locale) == "" {
		input.Locale = "vn"
	}
	if strings.TrimSpace(input.OrderInfo) == "" {
		input.OrderInfo = "Thanh toan don hang " + input.TxnRef
	}
	createAt := input.CreateAt
	if createAt.IsZero() {
		createAt = time.Now()
	}
	expireMinutes := input.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = defaultExpireMinutes
	}

	params := map[string]string{
		"vnp_Version":    Version,
		"vnp_Command":    Command,
		"vnp_TmnCode":    cfg.TmnCode,
		"vnp_Locale":     input.Locale,
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     input.TxnRef,
		"vnp_OrderInfo":  input.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Amount":     scaleAmount(input.Amount),
		"vnp_ReturnUrl":  cfg.ReturnURL,
		"vnp_IpAddr":     input.ClientIP,
		"vnp_CreateDate": createAt.Format(dateLayout),
		"vnp_ExpireDate": createAt.Add(time.Duration(expireMinutes) * time.Minute).Format(dateLayout),
	}

	signContent := buildSignContent(params)
	signed := signHMAC(signContent, cfg.HashSecret)
	return cfg.PayURL + "?" + signContent + "&vnp_SecureHash=" + signed, nil
}

// CallbackData 验签通过后的回调数据
type CallbackData struct {
	TxnRef        string          // 订单引用号
	Amount        decimal.Decimal // 支付金额（已还原 100 倍缩放）
	ResponseCode  string          // 网关响应码（00 = 支付成功）
	TransactionNo string          // 网关流水号
	BankCode      string          // 银行代码
	PayDate       string          // 支付时间（yyyyMMddHHmmss）
	OrderInfo     string          // 订单描述
}

// Success 判断支付是否成功
func (d *CallbackData) Success() bool {
	return d != nil && d.ResponseCode == "00"
}

// VerifyCallback 验证网关回调签名并解出回调数据。
// IPN 与浏览器回跳携带同一套签名参数，统一走这里校验。
func VerifyCallback(cfg *Config, query map[string][]string) (*CallbackData, error) {
	if cfg == nil || strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, ErrConfigInvalid
	}
	params := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}

	secureHash := strings.TrimSpace(params["vnp_SecureHash"])
	if secureHash == "" {
		return nil, ErrSignatureInvalid
	}
	delete(params, "vnp_SecureHash")
	delete(params, "vnp_SecureHashType")

	expected := signHMAC(buildSignContent(params), cfg.HashSecret)
	if !strings.EqualFold(expected, secureHash) {
		return nil, ErrSignatureInvalid
	}

	amount, err := unscaleAmount(params["vnp_Amount"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount", ErrParamsInvalid)
	}
	return &CallbackData{
		TxnRef:        params["vnp_TxnRef"],
		Amount:        amount,
		ResponseCode:  params["vnp_ResponseCode"],
		TransactionNo: params["vnp_TransactionNo"],
		BankCode:      params["vnp_BankCode"],
		PayDate:       params["vnp_PayDate"],
		OrderInfo:     params["vnp_OrderInfo"],
	}, nil
}

// buildSignContent 构建签名串：按 key 升序排序后以 k=v&k=v 拼接，
// 跳过空值与签名字段本身，值不做 URL 编码（与网关约定一致）。
func buildSignContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString("&")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(params[k])
	}
	return builder.String()
}

func signHMAC(content, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}

func scaleAmount(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(amountScale)).Truncate(0).String()
}

func unscaleAmount(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	return value.Div(decimal.NewFromInt(amountScale)), nil
}

// responseMessages 网关响应码对应的展示文案
var responseMessages = map[string]string{
	"00": "Transaction successful",
	"07": "Money deducted, transaction flagged as suspicious",
	"09": "Card/account not registered for InternetBanking",
	"10": "Card/account information verified incorrectly more than 3 times",
	"11": "Payment window expired, please retry the transaction",
	"12": "Card/account is locked",
	"13": "Wrong transaction OTP entered",
	"24": "Transaction cancelled by customer",
	"51": "Insufficient account balance",
	"65": "Daily transaction limit exceeded",
	"75": "Payment bank under maintenance",
	"79": "Wrong payment password entered too many times",
	"99": "Other error",
}

// ResponseMessage 根据响应码取展示文案
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[strings.TrimSpace(code)]; ok {
		return msg
	}
	return "Unknown error"
}
