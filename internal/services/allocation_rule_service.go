package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
)

// allocationRuleService handles allocation rule business logic.
type allocationRuleService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewAllocationRuleService creates a new AllocationRuleServicer.
func NewAllocationRuleService(db *gorm.DB, notifier *Notifier) AllocationRuleServicer {
	return &allocationRuleService{db: db, notifier: notifier}
}

// CreateRule creates a new allocation rule. The percentages must sum to 100.
func (s *allocationRuleService) CreateRule(userID, name string, freiberufPct, gewerbePct, personalPct int) (*models.AllocationRule, error) {
	rule := &models.AllocationRule{
		UserID:       userID,
		Name:         name,
		FreiberufPct: freiberufPct,
		GewerbePct:   gewerbePct,
		PersonalPct:  personalPct,
	}
	if !rule.SumsToHundred() {
		return nil, apperrors.ErrAllocationSum
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetUserRules returns a paginated list of allocation rules.
func (s *allocationRuleService) GetUserRules(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AllocationRule], error) {
	page.Defaults()

	base := s.db.Model(&models.AllocationRule{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.AllocationRule
	if err := base.Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRuleByID returns a rule if it belongs to the user.
func (s *allocationRuleService) GetRuleByID(userID, ruleID string) (*models.AllocationRule, error) {
	var rule models.AllocationRule
	if err := s.db.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAllocationRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRule replaces the rule's split. Updating re-validates the sum and
// affects all expenses referencing the rule.
func (s *allocationRuleService) UpdateRule(userID, ruleID, name string, freiberufPct, gewerbePct, personalPct int) (*models.AllocationRule, error) {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return nil, err
	}

	if freiberufPct+gewerbePct+personalPct != 100 {
		return nil, apperrors.ErrAllocationSum
	}

	updates := map[string]interface{}{
		"freiberuf_pct": freiberufPct,
		"gewerbe_pct":   gewerbePct,
		"personal_pct":  personalPct,
	}
	if name != "" {
		updates["name"] = name
	}

	if err := s.db.Model(rule).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.LedgerChanged(userID)
	return rule, nil
}

// DeleteRule soft-deletes a rule unless expenses still reference it.
func (s *allocationRuleService) DeleteRule(userID, ruleID string) error {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.ExpenseEntry{}).Where("allocation_rule_id = ?", ruleID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrAllocationRuleInUse
	}

	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
