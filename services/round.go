package services

import (
	"gorm.io/gorm"

	"application-evaluator-api/models"
)

// roundClone is a detached copy of a round's criterion configuration. Tree
// edges are expressed as indexes into Groups because database ids for the
// copies do not exist until the clone is persisted: GroupParent[i] is the
// index of group i's parent (-1 for a root), and parents always precede their
// children. CriterionGroup[j] is the index of criterion j's group (-1 for an
// ungrouped criterion).
type roundClone struct {
	Round          models.ApplicationRound
	Groups         []models.CriterionGroup
	GroupParent    []int
	Criteria       []models.Criterion
	CriterionGroup []int
}

// buildRoundClone copies the round's criterion groups and criteria without
// applications, scores, comments, submittals or lifecycle flags. Clones
// always start as unpublished drafts.
func buildRoundClone(round *models.ApplicationRound) roundClone {
	clone := roundClone{
		Round: models.ApplicationRound{
			Name:         round.Name,
			Description:  round.Description,
			ScoringModel: round.ScoringModel,
			AdminID:      round.AdminID,
		},
	}

	// Walk the group tree parents-first so each copied group can reference
	// its parent's position.
	indexByOldID := make(map[int]int, len(round.CriterionGroups))
	var walk func(parentOldID *int, parentIndex int)
	walk = func(parentOldID *int, parentIndex int) {
		var siblings []models.CriterionGroup
		for _, g := range round.CriterionGroups {
			sameParent := (g.ParentID == nil && parentOldID == nil) ||
				(g.ParentID != nil && parentOldID != nil && *g.ParentID == *parentOldID)
			if sameParent {
				siblings = append(siblings, g)
			}
		}
		models.SortGroups(siblings)
		for _, g := range siblings {
			index := len(clone.Groups)
			indexByOldID[g.GroupID] = index
			clone.Groups = append(clone.Groups, models.CriterionGroup{
				Name:      g.Name,
				Abbr:      g.Abbr,
				Order:     g.Order,
				Threshold: g.Threshold,
			})
			clone.GroupParent = append(clone.GroupParent, parentIndex)
			oldID := g.GroupID
			walk(&oldID, index)
		}
	}
	walk(nil, -1)

	for _, c := range round.Criteria {
		groupIndex := -1
		if c.GroupID != nil {
			if index, ok := indexByOldID[*c.GroupID]; ok {
				groupIndex = index
			}
		}
		clone.Criteria = append(clone.Criteria, models.Criterion{
			Name:   c.Name,
			Public: c.Public,
			Order:  c.Order,
			Weight: c.Weight,
		})
		clone.CriterionGroup = append(clone.CriterionGroup, groupIndex)
	}
	return clone
}

// CloneRound duplicates a round's criterion group tree and criteria into a
// fresh draft round. The source round must have CriterionGroups and Criteria
// preloaded. Applications, scores, comments and submittals are never copied.
func CloneRound(db *gorm.DB, round *models.ApplicationRound) (*models.ApplicationRound, error) {
	clone := buildRoundClone(round)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clone.Round).Error; err != nil {
			return err
		}
		for i := range clone.Groups {
			clone.Groups[i].RoundID = clone.Round.RoundID
			if parent := clone.GroupParent[i]; parent >= 0 {
				parentID := clone.Groups[parent].GroupID
				clone.Groups[i].ParentID = &parentID
			}
			if err := tx.Create(&clone.Groups[i]).Error; err != nil {
				return err
			}
		}
		for i := range clone.Criteria {
			clone.Criteria[i].RoundID = clone.Round.RoundID
			if group := clone.CriterionGroup[i]; group >= 0 {
				groupID := clone.Groups[group].GroupID
				clone.Criteria[i].GroupID = &groupID
			}
			if err := tx.Create(&clone.Criteria[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	clone.Round.CriterionGroups = clone.Groups
	clone.Round.Criteria = clone.Criteria
	return &clone.Round, nil
}
