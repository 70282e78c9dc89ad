package contract

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee  Role = "employee"
	RoleHRManager Role = "hr_manager"
	RoleEmployer  Role = "employer"
)

// Roles lists every role the coordinator accepts.
var Roles = []Role{RoleEmployee, RoleHRManager, RoleEmployer}

func ParseRole(s string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(s))) {
	case RoleEmployee:
		return RoleEmployee, true
	case RoleHRManager:
		return RoleHRManager, true
	case RoleEmployer:
		return RoleEmployer, true
	default:
		return "", false
	}
}

// Category partitions remembered state. Every category must be covered by the
// policy table before the process starts serving requests.
type Category string

const (
	CategoryPreferences          Category = "preferences"
	CategorySymptomLog           Category = "symptom_log"
	CategoryAccommodationHistory Category = "accommodation_history"
	CategoryPolicyLog            Category = "policy_log"
	CategoryROIMetrics           Category = "roi_metrics"
	CategoryWellnessTips         Category = "wellness_tips"
)

// Categories lists every category known to the core.
var Categories = []Category{
	CategoryPreferences,
	CategorySymptomLog,
	CategoryAccommodationHistory,
	CategoryPolicyLog,
	CategoryROIMetrics,
	CategoryWellnessTips,
}

type DecisionKind string

const (
	DecisionAllow           DecisionKind = "allow"
	DecisionDeny            DecisionKind = "deny"
	DecisionAllowAggregated DecisionKind = "allow_aggregated"
)

// Decision is the outcome of a policy lookup. MinGroupSize is only meaningful
// for DecisionAllowAggregated.
type Decision struct {
	Kind         DecisionKind `json:"kind"`
	MinGroupSize int          `json:"min_group_size,omitempty"`
}

func Allow() Decision { return Decision{Kind: DecisionAllow} }

func Deny() Decision { return Decision{Kind: DecisionDeny} }

func AllowAggregated(minGroupSize int) Decision {
	return Decision{Kind: DecisionAllowAggregated, MinGroupSize: minGroupSize}
}

// Handle is the capability token handlers receive from the coordinator.
// Fields are unexported so a handler cannot rewrite its own scope; the only
// way to obtain one is MintHandle, which the coordinator calls after the
// session's role is resolved and pinned.
type Handle struct {
	role           Role
	scope          string
	organizationID string
	department     string
	sessionID      string
}

// MintHandle constructs a capability handle. Outside of tests, the
// coordinator's mint step is the only caller; services and handlers accept
// handles, they never create them.
func MintHandle(role Role, scope, organizationID, department, sessionID string) Handle {
	return Handle{
		role:           role,
		scope:          scope,
		organizationID: organizationID,
		department:     department,
		sessionID:      sessionID,
	}
}

func (h Handle) Role() Role             { return h.role }
func (h Handle) Scope() string          { return h.scope }
func (h Handle) OrganizationID() string { return h.organizationID }
func (h Handle) Department() string     { return h.department }
func (h Handle) SessionID() string      { return h.sessionID }

func (h Handle) Zero() bool { return h.role == "" && h.scope == "" }

// Target identifies which role-specialized handler answers a request.
type Target string

const (
	TargetEmployee     Target = "employee_support"
	TargetHRManager    Target = "hr_manager"
	TargetEmployer     Target = "employer_insights"
	TargetLeaveRequest Target = "leave_request"
	TargetSearch       Target = "search"
	TargetHelp         Target = "help"
)

// Request is the shape the coordinator consumes at its boundary.
type Request struct {
	SessionID      string `json:"session_id"`
	ClaimedRole    string `json:"claimed_role"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Department     string `json:"department,omitempty"`
	Text           string `json:"text"`
}

type Response struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// HandlerRequest is what the coordinator passes to the selected handler. The
// handle is the only object that unlocks memory access.
type HandlerRequest struct {
	Text    string
	Target  Target
	Handle  Handle
	History []string
	Now     time.Time
}

// HandlerResult is the structured outcome a handler returns. The generation
// collaborator phrases it; it never decides whether the data may be shown.
type HandlerResult struct {
	Kind    string         `json:"kind"`
	Summary string         `json:"summary"`
	Data    map[string]any `json:"data,omitempty"`
}

type Statistic string

const (
	StatCount Statistic = "count"
	StatMean  Statistic = "mean"
	StatTrend Statistic = "trend"
)

// AggregateRecord is a threshold-aggregated view over many owners' entries.
// It is derived on demand and never contains per-owner values.
type AggregateRecord struct {
	OrganizationID    string    `json:"organization_id"`
	Category          Category  `json:"category"`
	GroupingKey       string    `json:"grouping_key"`
	Statistic         Statistic `json:"statistic"`
	Value             float64   `json:"value"`
	ContributingCount int       `json:"contributing_count"`
	Period            string    `json:"period"`
}

// AggregateResult is the tagged outcome of an aggregation call. Insufficient
// is a defined success value, not an error: handlers must render it as "not
// enough data to report".
type AggregateResult struct {
	Record       *AggregateRecord `json:"record,omitempty"`
	Insufficient bool             `json:"insufficient"`
}

func Insufficient() AggregateResult { return AggregateResult{Insufficient: true} }

func Aggregated(rec AggregateRecord) AggregateResult {
	return AggregateResult{Record: &rec}
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusDenied    RequestStatus = "denied"
	StatusCompleted RequestStatus = "completed"
)

// AnonymityLevel controls how much of an accommodation request HR may see.
type AnonymityLevel string

const (
	AnonymityFullyPrivate  AnonymityLevel = "fully_private"
	AnonymityAnonymousOnly AnonymityLevel = "anonymous_only"
	AnonymityShareable     AnonymityLevel = "shareable"
)

// DisclosureLevel controls how much health context travels with a request.
type DisclosureLevel string

const (
	DisclosureNoReason       DisclosureLevel = "no_reason"
	DisclosureWorkImpactOnly DisclosureLevel = "work_impact_only"
	DisclosureGeneralHealth  DisclosureLevel = "general_health"
)

type StatusChange struct {
	Status RequestStatus `json:"status"`
	At     time.Time     `json:"at"`
	By     string        `json:"by"`
	Note   string        `json:"note,omitempty"`
}

// AccommodationRequest is employee-owned. Status transitions append to
// History; nothing is ever overwritten or deleted.
type AccommodationRequest struct {
	RequestID       string          `json:"request_id"`
	UserID          string          `json:"user_id"`
	OrganizationID  string          `json:"organization_id"`
	Department      string          `json:"department,omitempty"`
	Type            string          `json:"type"`
	Status          RequestStatus   `json:"status"`
	History         []StatusChange  `json:"history"`
	AnonymityLevel  AnonymityLevel  `json:"anonymity_level"`
	DisclosureLevel DisclosureLevel `json:"disclosure_level"`
	WorkImpactNotes string          `json:"work_impact_notes,omitempty"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date,omitempty"`
	SubmittedAt     time.Time       `json:"submitted_at"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
