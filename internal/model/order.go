package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusFailed         OrderStatus = "FAILED"
)

// AllOrderStatuses 按生命周期顺序排列
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
	OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed,
}

// ActiveOrderStatuses 仍在处理中的订单状态
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady, OrderStatusOutForDelivery,
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsActive() bool {
	for _, v := range ActiveOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable 已送达或已取消的订单不能再取消
func (s OrderStatus) Cancellable() bool {
	return s != OrderStatusDelivered && s != OrderStatusCancelled
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentCash         PaymentMethod = "CASH"
	PaymentMobileWallet PaymentMethod = "MOBILE_WALLET"
	PaymentPaypal       PaymentMethod = "PAYPAL"
	PaymentApplePay     PaymentMethod = "APPLE_PAY"
	PaymentGooglePay    PaymentMethod = "GOOGLE_PAY"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentCash, PaymentMobileWallet,
		PaymentPaypal, PaymentApplePay, PaymentGooglePay:
		return true
	}
	return false
}

// CoffeeSize 饮品规格
type CoffeeSize string

const (
	SizeSmall      CoffeeSize = "SMALL"
	SizeMedium     CoffeeSize = "MEDIUM"
	SizeLarge      CoffeeSize = "LARGE"
	SizeExtraLarge CoffeeSize = "EXTRA_LARGE"
)

func (s CoffeeSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

var (
	TaxRate            = decimal.RequireFromString("0.10")
	DefaultDeliveryFee = decimal.RequireFromString("2.99")
)

// EstimatedDeliveryWindow 下单后预计送达的时间
const EstimatedDeliveryWindow = 30 * time.Minute

// Order 订单，订单项按值归属于订单
type Order struct {
	ID                    int             `json:"id"`
	UserID                int             `json:"user_id"`
	OrderNumber           string          `json:"order_number"`
	OrderDate             time.Time       `json:"order_date"`
	Status                OrderStatus     `json:"status"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	Tax                   decimal.Decimal `json:"tax"`
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	PaymentMethod         PaymentMethod   `json:"payment_method"`
	PaymentID             string          `json:"payment_id,omitempty"`
	Paid                  bool            `json:"paid"`
	DeliveryAddressID     int             `json:"delivery_address_id"`
	DeliveryAddress       *Address        `json:"delivery_address,omitempty"`
	SpecialInstructions   string          `json:"special_instructions,omitempty"`
	EstimatedDeliveryTime *time.Time      `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time      `json:"actual_delivery_time,omitempty"`
	Items                 []OrderItem     `json:"items"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// OrderItem 订单项，价格在下单时从商品复制
type OrderItem struct {
	ID             int             `json:"id"`
	OrderID        int             `json:"order_id"`
	ProductID      int             `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	ProductImage   string          `json:"product_image,omitempty"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Size           CoffeeSize      `json:"size,omitempty"`
	Customizations string          `json:"customizations,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItem 添加订单项并重新计算金额
func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.CalculateTotals()
}

// RemoveItem 按下标移除订单项并重新计算金额
func (o *Order) RemoveItem(index int) {
	if index < 0 || index >= len(o.Items) {
		return
	}
	o.Items = append(o.Items[:index], o.Items[index+1:]...)
	o.CalculateTotals()
}

// CalculateTotals 从订单项重新计算小计、税费和总额
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	o.Subtotal = subtotal
	o.Tax = subtotal.Mul(TaxRate).Round(2)
	o.TotalAmount = o.Subtotal.Add(o.Tax).Add(o.DeliveryFee)
}

// OrderSummary 订单列表中的简要信息
type OrderSummary struct {
	ID          int             `json:"id"`
	OrderNumber string          `json:"order_number"`
	OrderDate   time.Time       `json:"order_date"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

type OrderItemRequest struct {
	ProductID      int        `json:"product_id" binding:"required,min=1"`
	Quantity       int        `json:"quantity" binding:"required,min=1"`
	Size           CoffeeSize `json:"size" binding:"coffee_size"`
	Customizations string     `json:"customizations" binding:"max=500"`
	Notes          string     `json:"notes" binding:"max=500"`
}

type CreateOrderRequest struct {
	DeliveryAddressID   int                `json:"delivery_address_id" binding:"required,min=1"`
	PaymentMethod       PaymentMethod      `json:"payment_method" binding:"required,payment_method"`
	Items               []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	SpecialInstructions string             `json:"special_instructions" binding:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,order_status"`
}

// OrderStats 管理端统计数据
type OrderStats struct {
	CountsByStatus   map[OrderStatus]int `json:"counts_by_status"`
	DeliveredRevenue decimal.Decimal     `json:"delivered_revenue"`
	TotalUsers       int                 `json:"total_users"`
	ErrorCounts      map[int]int         `json:"error_counts"`
	From             time.Time           `json:"from"`
	To               time.Time           `json:"to"`
}
