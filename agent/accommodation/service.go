// Package accommodation owns the AccommodationRequest lifecycle. Requests are
// employee-owned memory entries; HR only ever gets redacted views and the
// status-transition operation, never raw request content beyond what the
// owner's anonymity level permits.
package accommodation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
)

var (
	ErrRequestNotFound  = errors.New("accommodation request not found")
	ErrBadTransition    = errors.New("invalid status transition")
	ErrUnknownStatus    = errors.New("unknown request status")
	ErrUnknownType      = errors.New("unknown request type")
	ErrMissingStartDate = errors.New("start date is required")
	ErrEmployeeOnly     = errors.New("only employees submit accommodation requests")
	ErrHROnly           = errors.New("only hr managers transition accommodation requests")
)

// RequestTypes mirrors the quick-request options employees can pick from.
var RequestTypes = map[string]struct{}{
	"sick_day":              {},
	"remote_work":           {},
	"flexible_hours":        {},
	"reduced_meetings":      {},
	"physical_modification": {},
}

var allowedTransitions = map[contractx.RequestStatus][]contractx.RequestStatus{
	contractx.StatusPending:  {contractx.StatusApproved, contractx.StatusDenied},
	contractx.StatusApproved: {contractx.StatusCompleted},
}

type SubmitParams struct {
	Type            string
	StartDate       string
	EndDate         string
	AnonymityLevel  contractx.AnonymityLevel
	DisclosureLevel contractx.DisclosureLevel
	WorkImpactNotes string
}

// Service mediates every accommodation read and write. It sits behind the
// leave-request handler; handler code never reaches the store around it.
type Service struct {
	store memoryx.Store
	now   func() time.Time
	newID func() string
}

func NewService(store memoryx.Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("memory store is required")
	}
	return &Service{
		store: store,
		now:   time.Now,
		newID: func() string { return "LR-" + uuid.NewString() },
	}, nil
}

// Submit creates a pending request owned by the employee behind the handle.
func (s *Service) Submit(ctx context.Context, handle contractx.Handle, params SubmitParams) (contractx.AccommodationRequest, error) {
	if handle.Role() != contractx.RoleEmployee {
		return contractx.AccommodationRequest{}, fmt.Errorf("%w: %v", contractx.ErrPrivacyViolation, ErrEmployeeOnly)
	}
	if _, ok := RequestTypes[params.Type]; !ok {
		return contractx.AccommodationRequest{}, fmt.Errorf("%w: %q", ErrUnknownType, params.Type)
	}
	if params.StartDate == "" {
		return contractx.AccommodationRequest{}, ErrMissingStartDate
	}
	if params.AnonymityLevel == "" {
		params.AnonymityLevel = contractx.AnonymityAnonymousOnly
	}
	if params.DisclosureLevel == "" {
		params.DisclosureLevel = contractx.DisclosureNoReason
	}

	now := s.now().UTC()
	request := contractx.AccommodationRequest{
		RequestID:       s.newID(),
		UserID:          handle.Scope(),
		OrganizationID:  handle.OrganizationID(),
		Department:      handle.Department(),
		Type:            params.Type,
		Status:          contractx.StatusPending,
		History:         []contractx.StatusChange{{Status: contractx.StatusPending, At: now, By: handle.Scope()}},
		AnonymityLevel:  params.AnonymityLevel,
		DisclosureLevel: params.DisclosureLevel,
		WorkImpactNotes: params.WorkImpactNotes,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
		SubmittedAt:     now,
	}

	if err := s.put(ctx, &request); err != nil {
		return contractx.AccommodationRequest{}, err
	}
	return request, nil
}

// Get returns the request as the caller is allowed to see it: owners get the
// full record, HR gets a redacted view, everyone else is denied.
func (s *Service) Get(ctx context.Context, handle contractx.Handle, requestID string) (contractx.AccommodationRequest, error) {
	request, err := s.find(ctx, handle.OrganizationID(), requestID)
	if err != nil {
		return contractx.AccommodationRequest{}, err
	}

	switch {
	case handle.Role() == contractx.RoleEmployee && handle.Scope() == request.UserID:
		return *request, nil
	case handle.Role() == contractx.RoleHRManager:
		return redact(*request), nil
	default:
		s.denyLog(handle, "get", requestID)
		return contractx.AccommodationRequest{}, fmt.Errorf("%w: accommodation request access", contractx.ErrPrivacyViolation)
	}
}

// ListForOwner returns the employee's own requests, newest first.
func (s *Service) ListForOwner(ctx context.Context, handle contractx.Handle) ([]contractx.AccommodationRequest, error) {
	if handle.Role() != contractx.RoleEmployee {
		s.denyLog(handle, "list_own", "")
		return nil, fmt.Errorf("%w: accommodation request access", contractx.ErrPrivacyViolation)
	}
	all, err := s.scan(ctx, handle.OrganizationID())
	if err != nil {
		return nil, err
	}
	var out []contractx.AccommodationRequest
	for _, request := range all {
		if request.UserID == handle.Scope() {
			out = append(out, request)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListForOrg returns every request in the organization redacted for HR
// review.
func (s *Service) ListForOrg(ctx context.Context, handle contractx.Handle) ([]contractx.AccommodationRequest, error) {
	if handle.Role() != contractx.RoleHRManager {
		s.denyLog(handle, "list_org", "")
		return nil, fmt.Errorf("%w: accommodation request access", contractx.ErrPrivacyViolation)
	}
	all, err := s.scan(ctx, handle.OrganizationID())
	if err != nil {
		return nil, err
	}
	out := make([]contractx.AccommodationRequest, 0, len(all))
	for _, request := range all {
		out = append(out, redact(request))
	}
	sortNewestFirst(out)
	return out, nil
}

// Transition appends a status change. Only HR may transition, only along the
// allowed edges, and the change is recorded in history rather than
// overwriting anything.
func (s *Service) Transition(ctx context.Context, handle contractx.Handle, requestID string, next contractx.RequestStatus, note string) (contractx.AccommodationRequest, error) {
	if handle.Role() != contractx.RoleHRManager {
		s.denyLog(handle, "transition", requestID)
		return contractx.AccommodationRequest{}, fmt.Errorf("%w: %v", contractx.ErrPrivacyViolation, ErrHROnly)
	}
	switch next {
	case contractx.StatusApproved, contractx.StatusDenied, contractx.StatusCompleted:
	default:
		return contractx.AccommodationRequest{}, fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}

	request, err := s.find(ctx, handle.OrganizationID(), requestID)
	if err != nil {
		return contractx.AccommodationRequest{}, err
	}

	if !transitionAllowed(request.Status, next) {
		return contractx.AccommodationRequest{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, request.Status, next)
	}

	request.Status = next
	request.History = append(request.History, contractx.StatusChange{
		Status: next,
		At:     s.now().UTC(),
		By:     handle.Scope(),
		Note:   note,
	})

	if err := s.put(ctx, request); err != nil {
		return contractx.AccommodationRequest{}, err
	}
	return redact(*request), nil
}

// put persists the record keyed by request ID. The department the request was
// submitted under rides along as the grouping key so transitions never move
// the entry out of its department group.
func (s *Service) put(ctx context.Context, request *contractx.AccommodationRequest) error {
	value, err := toValue(request)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, &memoryx.Entry{
		Scope:          request.UserID,
		OrganizationID: request.OrganizationID,
		Category:       contractx.CategoryAccommodationHistory,
		Key:            request.RequestID,
		GroupingKey:    request.Department,
		Value:          value,
	})
}

func (s *Service) find(ctx context.Context, organizationID, requestID string) (*contractx.AccommodationRequest, error) {
	all, err := s.scan(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].RequestID == requestID {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: id=%s", ErrRequestNotFound, requestID)
}

func (s *Service) scan(ctx context.Context, organizationID string) ([]contractx.AccommodationRequest, error) {
	entries, err := s.store.Scan(ctx, organizationID, contractx.CategoryAccommodationHistory, "")
	if err != nil {
		return nil, err
	}
	out := make([]contractx.AccommodationRequest, 0, len(entries))
	for i := range entries {
		request, err := fromValue(entries[i].Value)
		if err != nil {
			return nil, err
		}
		out = append(out, *request)
	}
	return out, nil
}

func (s *Service) denyLog(handle contractx.Handle, op, requestID string) {
	log.Warn().
		Str("role", string(handle.Role())).
		Str("op", op).
		Str("request_id", requestID).
		Msg("accommodation access denied")
}

func transitionAllowed(from, to contractx.RequestStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// redact strips identity and health context to what the owner's anonymity and
// disclosure levels permit.
func redact(request contractx.AccommodationRequest) contractx.AccommodationRequest {
	owner := request.UserID
	request.History = append([]contractx.StatusChange(nil), request.History...)
	if request.AnonymityLevel != contractx.AnonymityShareable {
		request.UserID = "anonymous"
		for i := range request.History {
			if request.History[i].By == owner {
				request.History[i].By = "anonymous"
			}
		}
	}
	if request.DisclosureLevel == contractx.DisclosureNoReason {
		request.WorkImpactNotes = ""
	}
	return request
}

func sortNewestFirst(requests []contractx.AccommodationRequest) {
	for i := 1; i < len(requests); i++ {
		for j := i; j > 0 && requests[j].SubmittedAt.After(requests[j-1].SubmittedAt); j-- {
			requests[j], requests[j-1] = requests[j-1], requests[j]
		}
	}
}

// toValue/fromValue round-trip requests through plain JSON values so the
// record shape is identical across store implementations.
func toValue(request *contractx.AccommodationRequest) (any, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode accommodation request: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode accommodation request: %w", err)
	}
	return value, nil
}

func fromValue(value any) (*contractx.AccommodationRequest, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode stored accommodation value: %w", err)
	}
	var request contractx.AccommodationRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decode stored accommodation value: %w", err)
	}
	return &request, nil
}
