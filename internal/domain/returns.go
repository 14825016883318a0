package domain

import "time"

type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnReceived  ReturnStatus = "received"
	ReturnRefunded  ReturnStatus = "refunded"
	ReturnCancelled ReturnStatus = "cancelled"
)

// ReturnEligibilityWindow is measured from the order's delivery timestamp.
const ReturnEligibilityWindow = 30 * 24 * time.Hour

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnApproved:  {ReturnRequested},
	ReturnRejected:  {ReturnRequested},
	ReturnReceived:  {ReturnApproved},
	ReturnRefunded:  {ReturnReceived},
	ReturnCancelled: {ReturnRequested, ReturnApproved},
}

// CanTransitionReturn reports whether a return request may move between the
// two statuses.
func CanTransitionReturn(from, to ReturnStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range returnTransitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// ReturnLine references a line of the original order by product, with the
// quantity being sent back.
type ReturnLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ReturnRequest struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"orderId"`
	UserID    string       `json:"userId"`
	Lines     []ReturnLine `json:"items"`
	Reason    string       `json:"reason"`
	Status    ReturnStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
