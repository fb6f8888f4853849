package notifications

const (
	TypePurchaseApproved    = "purchase_approved"
	TypePurchaseDelivered   = "purchase_delivered"
	TypePurchaseCancelled   = "purchase_cancelled"
	TypeApplicationAccepted = "application_accepted"
	TypeApplicationRejected = "application_rejected"
	TypeSnapshotPublished   = "snapshot_published"
)
