package orders

const (
	TopicOrderPlaced = "order.placed"
	TopicOrderStatus = "order.status"
)

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
