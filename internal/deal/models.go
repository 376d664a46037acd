// Package deal manages the sales pipeline: deals move through a fixed set of
// stages from first contact to a won or lost close.
package deal

import (
	"strings"
	"time"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	dErrors "github.com/icnevudila/crm-sub011/pkg/domain-errors"
)

// Stage is a pipeline column.
type Stage string

const (
	StageLead        Stage = "LEAD"
	StageQualified   Stage = "QUALIFIED"
	StageProposal    Stage = "PROPOSAL"
	StageNegotiation Stage = "NEGOTIATION"
	StageWon         Stage = "WON"
	StageLost        Stage = "LOST"
)

// stageTransitions is the kanban move table. A deal advances one stage at a
// time and may be lost from any open stage; WON and LOST are terminal.
var stageTransitions = map[Stage][]Stage{
	StageLead:        {StageQualified, StageLost},
	StageQualified:   {StageProposal, StageLost},
	StageProposal:    {StageNegotiation, StageLost},
	StageNegotiation: {StageWon, StageLost},
	StageWon:         {},
	StageLost:        {},
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	_, ok := stageTransitions[s]
	return ok
}

// Terminal reports whether the deal is closed.
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost
}

// CanMoveTo reports whether the move from s to next is allowed.
func (s Stage) CanMoveTo(next Stage) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Deal is one opportunity in the pipeline.
type Deal struct {
	ID          id.DealID
	CompanyID   id.CompanyID
	CustomerID  id.CustomerID
	OwnerID     id.UserID
	Title       string
	AmountCents int64
	Stage       Stage
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MoveTo applies a stage transition, stamping ClosedAt on a terminal move.
func (d *Deal) MoveTo(next Stage, now time.Time) error {
	if !next.Valid() {
		return dErrors.NewValidation(map[string]string{"stage": "unknown stage"})
	}
	if !d.Stage.CanMoveTo(next) {
		return dErrors.New(dErrors.CodeConflict, "deal cannot move from "+string(d.Stage)+" to "+string(next))
	}
	d.Stage = next
	d.UpdatedAt = now
	if next.Terminal() {
		closed := now
		d.ClosedAt = &closed
	}
	return nil
}

const maxTitleLength = 200

// CreateRequest is the POST /deals body.
type CreateRequest struct {
	Title       string `json:"title"`
	CustomerID  string `json:"customerId"`
	OwnerID     string `json:"ownerId"`
	AmountCents int64  `json:"amountCents"`
}

func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.OwnerID = strings.TrimSpace(r.OwnerID)
}

func (r *CreateRequest) Validate() error {
	fields := map[string]string{}
	if r.Title == "" {
		fields["title"] = "title is required"
	}
	if len(r.Title) > maxTitleLength {
		fields["title"] = "title is too long"
	}
	if r.CustomerID == "" {
		fields["customerId"] = "customer is required"
	}
	if r.AmountCents < 0 {
		fields["amountCents"] = "amount must not be negative"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// UpdateRequest is the PUT /deals/{id} body. The stage is changed through the
// dedicated stage endpoint, not here.
type UpdateRequest struct {
	Title       string `json:"title"`
	OwnerID     string `json:"ownerId"`
	AmountCents int64  `json:"amountCents"`
}

func (r *UpdateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.OwnerID = strings.TrimSpace(r.OwnerID)
}

func (r *UpdateRequest) Validate() error {
	fields := map[string]string{}
	if r.Title == "" {
		fields["title"] = "title is required"
	}
	if len(r.Title) > maxTitleLength {
		fields["title"] = "title is too long"
	}
	if r.AmountCents < 0 {
		fields["amountCents"] = "amount must not be negative"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// StageRequest is the POST /deals/{id}/stage body.
type StageRequest struct {
	Stage string `json:"stage"`
}

func (r *StageRequest) Normalize() {
	r.Stage = strings.ToUpper(strings.TrimSpace(r.Stage))
}

func (r *StageRequest) Validate() error {
	if r.Stage == "" {
		return dErrors.NewValidation(map[string]string{"stage": "stage is required"})
	}
	if !Stage(r.Stage).Valid() {
		return dErrors.NewValidation(map[string]string{"stage": "unknown stage"})
	}
	return nil
}

// Response is the JSON shape of a deal.
type Response struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	CustomerID  string     `json:"customerId"`
	OwnerID     string     `json:"ownerId,omitempty"`
	Title       string     `json:"title"`
	AmountCents int64      `json:"amountCents"`
	Stage       string     `json:"stage"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toResponse(d *Deal) Response {
	resp := Response{
		ID:          d.ID.String(),
		CompanyID:   d.CompanyID.String(),
		CustomerID:  d.CustomerID.String(),
		Title:       d.Title,
		AmountCents: d.AmountCents,
		Stage:       string(d.Stage),
		ClosedAt:    d.ClosedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if !d.OwnerID.IsNil() {
		resp.OwnerID = d.OwnerID.String()
	}
	return resp
}
