package models

// AttemptStatus is the lifecycle state of an exam attempt.
// in_progress --(submit)--> completed; completed is terminal.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// PurchaseStatus mirrors the payment processor's settlement state for a course purchase
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)
