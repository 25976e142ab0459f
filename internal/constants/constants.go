package constants

// 订单状态常量。闭集：状态只能取这里定义的值，
// 状态之间的迁移由 service 层的迁移表唯一裁决。
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// AllOrderStatuses 全部订单状态（状态过滤与穷举测试使用）
var AllOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// 支付状态常量
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// 支付方式常量
const (
	PaymentMethodVNPay = "vnpay"
	PaymentMethodCOD   = "cod"
)

// 用户角色常量。数据库存 customer/seller，
// 对外（JWT、API 响应）把 customer 映射为 buyer。
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleBuyer    = "buyer"
)

// 订单取消方常量
const (
	CancelledByBuyer  = "buyer"
	CancelledBySeller = "seller"
)

// 商品状态常量
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// VNPay IPN 应答码常量（网关按这些码决定是否重试）
const (
	VNPayRspSuccess          = "00"
	VNPayRspOrderNotFound    = "01"
	VNPayRspAlreadyConfirmed = "02"
	VNPayRspInvalidAmount    = "04"
	VNPayRspChecksumFailed   = "97"
	VNPayRspUnknownError     = "99"
)
