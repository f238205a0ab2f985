package orders

const (
	TopicTrackingUpdated = "order.tracking.updated"
)

// Partition key = order_id so every event of one order stays ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
