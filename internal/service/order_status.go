package service

import "github.com/choviet-next/internal/constants"

// allowedTransitions 订单状态迁移表。不在表里的迁移一律拒绝，
// 含取消在内的所有状态变更都从这里裁决。
// processing 是可选中转：paid 可以直接发货，也可以先转入 processing。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusPaid:      true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusShipped:    true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

// isTransitionAllowed 判断状态迁移是否合法
func isTransitionAllowed(current, target string) bool {
	targets, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return targets[target]
}

// isOrderStatusValid 判断是否闭集内的状态值
func isOrderStatusValid(status string) bool {
	for _, s := range constants.AllOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
