package events

// Topics published by the POS services. Consumers match on the exact
// string, so these values are part of the wire contract.
const (
	TopicReceiptCreated = "receipt.created"
	TopicReceiptUpdated = "receipt.updated"
	TopicReceiptDeleted = "receipt.deleted"
	TopicProductUpdated = "product.updated"
)
