package models

import (
	"sort"
	"time"
)

// Scoring models supported per round. The model decides how multiple
// evaluators' scores for the same criterion are reduced before weighting.
const (
	ScoringModelEvaluatorsAverage    = "Evaluators average"
	ScoringModelOrganizationsAverage = "Organizations average"
)

// ApplicationRound is one evaluation campaign: all applications in the round
// are evaluated against the same criteria.
type ApplicationRound struct {
	RoundID          int    `gorm:"primaryKey;column:round_id" json:"round_id"`
	Name             string `gorm:"column:name" json:"name"`
	Description      string `gorm:"column:description" json:"description"`
	Published        bool   `gorm:"column:published" json:"-"`
	ScoringModel     string `gorm:"column:scoring_model;default:Evaluators average" json:"scoring_model"`
	ScoringCompleted bool   `gorm:"column:scoring_completed" json:"scoring_completed"`
	AdminID          *int   `gorm:"column:admin_id" json:"admin_id,omitempty"`

	// Relations
	Admin           *User                       `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Evaluators      []User                      `gorm:"many2many:application_round_evaluators" json:"evaluators,omitempty"`
	CriterionGroups []CriterionGroup            `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE" json:"criterion_groups,omitempty"`
	Criteria        []Criterion                 `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE" json:"criteria,omitempty"`
	Applications    []Application               `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`
	Submittals      []ApplicationRoundSubmittal `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE" json:"submittals,omitempty"`
}

// CriterionGroup is a grouping element for evaluation criteria. Groups nest
// through ParentID to form a hierarchy of any depth.
type CriterionGroup struct {
	GroupID   int      `gorm:"primaryKey;column:group_id" json:"group_id"`
	RoundID   int      `gorm:"column:round_id" json:"round_id"`
	ParentID  *int     `gorm:"column:parent_id" json:"parent_id,omitempty"`
	Name      string   `gorm:"column:name" json:"name"`
	Abbr      string   `gorm:"column:abbr" json:"abbr"`
	Order     int      `gorm:"column:group_order" json:"order"`
	Threshold *float64 `gorm:"column:threshold" json:"threshold,omitempty"`

	// Relations
	Parent      *CriterionGroup  `gorm:"foreignKey:ParentID" json:"-"`
	ChildGroups []CriterionGroup `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"child_groups,omitempty"`
	Criteria    []Criterion      `gorm:"foreignKey:GroupID" json:"criteria,omitempty"`
}

// Criterion is a scored dimension. Weight is relative within the round; the
// weights are not required to sum to any particular total.
type Criterion struct {
	CriterionID int     `gorm:"primaryKey;column:criterion_id" json:"criterion_id"`
	RoundID     int     `gorm:"column:round_id" json:"round_id"`
	GroupID     *int    `gorm:"column:group_id" json:"group_id,omitempty"`
	Name        string  `gorm:"column:name" json:"name"`
	Public      bool    `gorm:"column:public;default:true" json:"public"`
	Order       int     `gorm:"column:criterion_order" json:"order"`
	Weight      float64 `gorm:"column:weight" json:"weight"`
}

// ApplicationRoundSubmittal records that a user finalized their
// organization's scores for a round. Its existence freezes the
// organization's scores and unlocks peer visibility among submitted
// organizations.
type ApplicationRoundSubmittal struct {
	SubmittalID    int       `gorm:"primaryKey;column:submittal_id" json:"submittal_id"`
	RoundID        int       `gorm:"column:round_id;uniqueIndex:uq_round_org_user" json:"round_id"`
	OrganizationID int       `gorm:"column:organization_id;uniqueIndex:uq_round_org_user" json:"organization_id"`
	UserID         int       `gorm:"column:user_id;uniqueIndex:uq_round_org_user" json:"user_id"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (ApplicationRound) TableName() string {
	return "application_rounds"
}

func (CriterionGroup) TableName() string {
	return "criterion_groups"
}

func (Criterion) TableName() string {
	return "criteria"
}

func (ApplicationRoundSubmittal) TableName() string {
	return "application_round_submittals"
}

// TotalWeight returns the sum of all criterion weights in the round. It is
// the divisor for composite scores, including criteria nobody has scored.
func (r *ApplicationRound) TotalWeight() float64 {
	total := 0.0
	for _, c := range r.Criteria {
		total += c.Weight
	}
	return total
}

// PublicCriteria returns the round's public criteria only.
func (r *ApplicationRound) PublicCriteria() []Criterion {
	public := make([]Criterion, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		if c.Public {
			public = append(public, c)
		}
	}
	return public
}

// SubmittedOrganizationIDs returns the set of organizations with at least one
// submittal for the round. Requires Submittals to be preloaded.
func (r *ApplicationRound) SubmittedOrganizationIDs() map[int]bool {
	ids := make(map[int]bool, len(r.Submittals))
	for _, s := range r.Submittals {
		ids[s.OrganizationID] = true
	}
	return ids
}

// OrganizationHasSubmitted reports whether the organization has finalized its
// scores for this round.
func (r *ApplicationRound) OrganizationHasSubmitted(org *Organization) bool {
	if org == nil {
		return false
	}
	return r.SubmittedOrganizationIDs()[org.OrganizationID]
}

// IsRoundAdmin reports whether the user administers this round.
func (r *ApplicationRound) IsRoundAdmin(u *User) bool {
	return u != nil && r.AdminID != nil && *r.AdminID == u.UserID
}

// IsRoundEvaluator reports whether the user was allocated to the round
// directly, without going through an organization. Requires Evaluators to be
// preloaded.
func (r *ApplicationRound) IsRoundEvaluator(u *User) bool {
	if u == nil {
		return false
	}
	for _, e := range r.Evaluators {
		if e.UserID == u.UserID {
			return true
		}
	}
	return false
}

// SortGroups orders sibling criterion groups by (order, name) in place.
func SortGroups(groups []CriterionGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Order != groups[j].Order {
			return groups[i].Order < groups[j].Order
		}
		return groups[i].Name < groups[j].Name
	})
}

// SortCriteria orders criteria by (order, name) in place.
func SortCriteria(criteria []Criterion) {
	sort.SliceStable(criteria, func(i, j int) bool {
		if criteria[i].Order != criteria[j].Order {
			return criteria[i].Order < criteria[j].Order
		}
		return criteria[i].Name < criteria[j].Name
	})
}
