package shop

const (
	TopicOrderCreated     = "shop.order.created"
	TopicPaymentUploaded  = "shop.payment.uploaded"
	TopicPaymentConfirmed = "shop.payment.confirmed"
	TopicPaymentRejected  = "shop.payment.rejected"
)

// Partition key = order_id supaya event satu order tetap berurutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
