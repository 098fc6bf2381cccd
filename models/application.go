package models

import (
	"time"
)

// Application is one item under evaluation in a round. It is allocated to the
// organizations that evaluate it through EvaluatingOrganizations.
type Application struct {
	ApplicationID int    `gorm:"primaryKey;column:application_id" json:"application_id"`
	RoundID       int    `gorm:"column:round_id" json:"round_id"`
	Name          string `gorm:"column:name" json:"name"`
	Description   string `gorm:"column:description" json:"description"`
	Approved      bool   `gorm:"column:approved" json:"approved"`
	ApprovedByID  *int   `gorm:"column:approved_by_id" json:"approved_by_id,omitempty"`
	Hidden        bool   `gorm:"column:hidden" json:"-"`

	// Relations
	ApprovedBy              *User          `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	EvaluatingOrganizations []Organization `gorm:"many2many:application_evaluating_organizations" json:"evaluating_organizations,omitempty"`
	Scores                  []Score        `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"scores,omitempty"`
	Comments                []Comment      `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// Score is one evaluator's numeric value for one criterion of one
// application. Several evaluators are expected to score the same criterion.
type Score struct {
	ScoreID       int       `gorm:"primaryKey;column:score_id" json:"score_id"`
	ApplicationID int       `gorm:"column:application_id" json:"application_id"`
	CriterionID   int       `gorm:"column:criterion_id" json:"criterion_id"`
	EvaluatorID   int       `gorm:"column:evaluator_id" json:"evaluator_id"`
	Value         float64   `gorm:"column:score" json:"score"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	ModifiedAt    time.Time `gorm:"column:modified_at" json:"modified_at"`

	// Relations
	Criterion Criterion `gorm:"foreignKey:CriterionID" json:"-"`
	Evaluator User      `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
}

// Comment is one evaluator's free-text note on a criterion group of an
// application.
type Comment struct {
	CommentID        int       `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	ApplicationID    int       `gorm:"column:application_id" json:"application_id"`
	CriterionGroupID *int      `gorm:"column:criterion_group_id" json:"criterion_group_id,omitempty"`
	EvaluatorID      int       `gorm:"column:evaluator_id" json:"evaluator_id"`
	Text             string    `gorm:"column:comment" json:"comment"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	ModifiedAt       time.Time `gorm:"column:modified_at" json:"modified_at"`

	// Relations
	Evaluator User `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}

func (Score) TableName() string {
	return "scores"
}

func (Comment) TableName() string {
	return "comments"
}

// IsAllocatedTo reports whether the application was allocated to any of the
// user's organizations. Requires EvaluatingOrganizations and the user's
// Organizations to be preloaded.
func (a *Application) IsAllocatedTo(u *User) bool {
	if u == nil {
		return false
	}
	for _, org := range a.EvaluatingOrganizations {
		for _, userOrg := range u.Organizations {
			if org.OrganizationID == userOrg.OrganizationID {
				return true
			}
		}
	}
	return false
}

// ScoresForCriterion returns the application's scores for one criterion.
func (a *Application) ScoresForCriterion(criterionID int) []Score {
	var scores []Score
	for _, s := range a.Scores {
		if s.CriterionID == criterionID {
			scores = append(scores, s)
		}
	}
	return scores
}
