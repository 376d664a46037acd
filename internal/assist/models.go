package assist

import (
	"strings"

	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

const maxInstructionsLength = 1000

// FollowUpEmailRequest asks for a follow-up email draft for a customer.
type FollowUpEmailRequest struct {
	CustomerID   string `json:"customerId"`
	Instructions string `json:"instructions"`
}

func (r *FollowUpEmailRequest) Normalize() {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.Instructions = strings.TrimSpace(r.Instructions)
}

func (r *FollowUpEmailRequest) Validate() error {
	fields := map[string]string{}
	if r.CustomerID == "" {
		fields["customerId"] = "customer id is required"
	}
	if len(r.Instructions) > maxInstructionsLength {
		fields["instructions"] = "instructions are too long"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// DealSummaryRequest asks for a prose summary of a deal.
type DealSummaryRequest struct {
	DealID string `json:"dealId"`
}

func (r *DealSummaryRequest) Normalize() {
	r.DealID = strings.TrimSpace(r.DealID)
}

func (r *DealSummaryRequest) Validate() error {
	if r.DealID == "" {
		return dErrors.NewValidation(map[string]string{"dealId": "deal id is required"})
	}
	return nil
}

// Response carries generated text back to the caller.
type Response struct {
	Text string `json:"text"`
}
