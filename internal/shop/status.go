package shop

type PaymentMethod string

const (
	MethodTransfer PaymentMethod = "transfer"
	MethodEwallet  PaymentMethod = "ewallet"
	MethodCOD      PaymentMethod = "cod"
)

func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodTransfer, MethodEwallet, MethodCOD:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentWaiting   PaymentStatus = "WAITING_PAYMENT"
	PaymentUploaded  PaymentStatus = "PAYMENT_UPLOADED"
	PaymentConfirmed PaymentStatus = "PAYMENT_CONFIRMED"
	PaymentRejected  PaymentStatus = "PAYMENT_REJECTED"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// proofAllowed: state yang boleh menerima upload bukti pembayaran.
// PAYMENT_REJECTED -> PAYMENT_UPLOADED adalah edge resubmit eksplisit;
// re-upload dari PAYMENT_UPLOADED menimpa bukti lama (last write wins).
var proofAllowed = map[PaymentStatus]bool{
	PaymentWaiting:  true,
	PaymentUploaded: true,
	PaymentRejected: true,
}

func CanSubmitProof(from PaymentStatus) bool {
	return proofAllowed[from]
}

// validNext: transisi paymentStatus yang boleh dilakukan admin.
// Konfirmasi dan penolakan hanya dari PAYMENT_UPLOADED.
var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentWaiting:   {},
	PaymentUploaded:  {PaymentConfirmed: true, PaymentRejected: true},
	PaymentConfirmed: {},
	PaymentRejected:  {},
}

func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}

var validNextOrder = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:    {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

func CanTransitionOrder(from, to OrderStatus) bool {
	return validNextOrder[from][to]
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentWaiting, PaymentUploaded, PaymentConfirmed, PaymentRejected:
		return true
	}
	return false
}
