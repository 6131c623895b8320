package model

import "time"

// RequestStatus is the lifecycle state of an advisor request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestDeclined:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestDeclined
}

const (
	ActionApprove = "approve"
	ActionDecline = "decline"
)

// AdvisorRequest is a user's request to be assigned to an advisor.
type AdvisorRequest struct {
	ID          string        `json:"id" bson:"_id"`
	UserID      string        `json:"user" bson:"user"`
	AdvisorID   string        `json:"advisor" bson:"advisor"`
	Status      RequestStatus `json:"status" bson:"status"`
	Message     string        `json:"message" bson:"message"`
	RequestedAt time.Time     `json:"requestedAt" bson:"requested_at"`
	RespondedAt *time.Time    `json:"respondedAt" bson:"responded_at"`
}

type CreateAdvisorRequest struct {
	AdvisorID string `json:"advisorId" binding:"required"`
	Message   string `json:"message"`
}

type RespondAdvisorRequest struct {
	Action string `json:"action" binding:"required,oneof=approve decline"`
}

// AdvisorStatus is a user's current advisor and outstanding requests.
type AdvisorStatus struct {
	AssignedAdvisor *AdvisorSummary  `json:"assignedAdvisor"`
	PendingRequests []AdvisorRequest `json:"pendingRequests"`
}
