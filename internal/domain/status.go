package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// OrderStatus is the fulfilment state of an order. Values follow an intended
// progression but any value may be written at any time.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusBaking         OrderStatus = "baking"
	OrderStatusDecorating     OrderStatus = "decorating"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusBaking,
	OrderStatusDecorating,
	OrderStatusReady,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// tracker steps shown to customers; pending and cancelled are not on the tracker.
var progressSteps = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusBaking,
	OrderStatusDecorating,
	OrderStatusReady,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// OrderStatuses lists every known status in progression order, cancelled last.
func OrderStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderStatuses...)
}

// ProgressSteps lists the statuses rendered on the order tracker.
func ProgressSteps() []OrderStatus {
	return append([]OrderStatus(nil), progressSteps...)
}

// ParseOrderStatus normalises raw input into a known status.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	candidate := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	candidate = OrderStatus(strings.ReplaceAll(string(candidate), "_", "-"))
	for _, status := range orderStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// Valid reports whether the status is known.
func (s OrderStatus) Valid() bool {
	for _, status := range orderStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the order still counts as in progress.
func (s OrderStatus) IsActive() bool {
	return s != OrderStatusDelivered && s != OrderStatusCancelled
}

// Label renders the status for display.
func (s OrderStatus) Label() string {
	if s == OrderStatusOutForDelivery {
		return "Out for Delivery"
	}
	value := string(s)
	if value == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(r)) + value[size:]
}

// ProgressIndex returns the position of the status on the tracker, or -1.
func (s OrderStatus) ProgressIndex() int {
	for i, step := range progressSteps {
		if step == s {
			return i
		}
	}
	return -1
}
