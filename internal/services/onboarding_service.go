package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dreistrom/internal/calculator"
	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/taxrates"
)

// onboardingService drives the business registration checklist and the
// Kleinunternehmer decision engine.
type onboardingService struct {
	db *gorm.DB
}

// NewOnboardingService creates a new OnboardingServicer.
func NewOnboardingService(db *gorm.DB) OnboardingServicer {
	return &onboardingService{db: db}
}

// StepWithDecisions bundles a step with its attached decision points.
// EffectiveStatus surfaces BLOCKED for steps waiting on their dependencies.
type StepWithDecisions struct {
	models.RegistrationStep
	EffectiveStatus models.StepStatus      `json:"effective_status"`
	Decisions       []models.DecisionPoint `json:"decisions"`
}

// OnboardingProgress summarizes the checklist state.
type OnboardingProgress struct {
	Total      int                 `json:"total"`
	Completed  int                 `json:"completed"`
	InProgress int                 `json:"in_progress"`
	Skipped    int                 `json:"skipped"`
	Percent    int                 `json:"percent"`
	Steps      []StepWithDecisions `json:"steps"`
}

// stepSeed is one checklist template entry.
type stepSeed struct {
	number       int
	title        string
	description  string
	responsible  string
	dependencies []int
	optional     bool
}

// registrationSteps is the checklist for taking up self-employment next to
// employment, covering both a freelance and a commercial stream.
var registrationSteps = []stepSeed{
	{1, "ELSTER-Registrierung",
		"Bei ELSTER registrieren und Aktivierungscode anfordern (Versand per Post, 1-2 Wochen).",
		"USER", nil, false},
	{2, "Gewerbeanmeldung",
		"Gewerbe beim zuständigen Gewerbeamt anmelden (§14 GewO).",
		"USER", nil, false},
	{3, "Fragebogen zur steuerlichen Erfassung",
		"Fragebogen zur steuerlichen Erfassung über ELSTER einreichen, freiberufliche und gewerbliche Tätigkeit angeben (§138 AO).",
		"USER", []int{1}, false},
	{4, "Kleinunternehmerregelung entscheiden",
		"Über die Anwendung der Kleinunternehmerregelung (§19 UStG) entscheiden, abhängig von erwartetem Umsatz und Kundenstruktur.",
		"USER", []int{3}, false},
	{5, "USt-IdNr beantragen",
		"USt-IdNr beim Bundeszentralamt für Steuern beantragen, erforderlich für B2B-Geschäfte mit Plattformen und EU-Kunden.",
		"USER", []int{4}, true},
	{6, "Geschäftskonto eröffnen",
		"Separates Geschäftskonto für alle selbstständigen Einnahmen und Ausgaben eröffnen.",
		"USER", nil, false},
	{7, "Auszahlungskonto konfigurieren",
		"Geschäftskonto als Auszahlungsziel in den Marktplatz-Konsolen hinterlegen.",
		"USER", []int{6}, true},
	{8, "Arbeitgeber informieren",
		"Arbeitgeber schriftlich über die Nebentätigkeit informieren.",
		"USER", nil, false},
	{9, "Krankenkasse informieren",
		"Krankenkasse über zusätzliche selbstständige Einkünfte informieren (§206 SGB V).",
		"USER", nil, false},
	{10, "Buchhaltung einrichten",
		"GoBD-konforme Buchhaltung mit getrennten Kategorien für Freiberuf und Gewerbe einrichten.",
		"SYSTEM", nil, false},
	{11, "Rechnungsvorlagen erstellen",
		"Rechnungsvorlagen nach §14 UStG mit getrennten Nummernkreisen je Einkunftsart anlegen.",
		"USER", []int{4}, false},
	{12, "Steuerrücklage einrichten",
		"Monatlich 25-35% des selbstständigen Nettogewinns als Steuerrücklage zurücklegen.",
		"USER", []int{6}, false},
	{13, "Steuerberater konsultieren",
		"Steuerberater für die Ersteinrichtung konsultieren (Kosten absetzbar nach §4 Abs. 4 EStG).",
		"STEUERBERATER", nil, true},
	{14, "Einkommensteuererklärung",
		"Jährliche Einkommensteuererklärung mit Anlage N, S, G, EÜR und Vorsorgeaufwand abgeben.",
		"USER", []int{3, 10}, false},
	{15, "GoBD-Aufbewahrung sicherstellen",
		"GoBD-konforme Aufbewahrung der Belege über die gesetzlichen Fristen sicherstellen (§147 AO).",
		"SYSTEM", []int{10}, false},
}

// Initialize seeds the checklist for a user. Calling it again is a no-op.
func (s *onboardingService) Initialize(userID string) (*OnboardingProgress, error) {
	var existing int64
	if err := s.db.Model(&models.RegistrationStep{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if existing == 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			for _, seed := range registrationSteps {
				step := models.RegistrationStep{
					UserID:       userID,
					StepNumber:   seed.number,
					Title:        seed.title,
					Description:  seed.description,
					Responsible:  seed.responsible,
					Dependencies: seed.dependencies,
					Optional:     seed.optional,
					Status:       models.StepNotStarted,
				}
				if err := tx.Create(&step).Error; err != nil {
					return err
				}
				if seed.number == 4 {
					dp := models.DecisionPoint{
						UserID:   userID,
						StepID:   step.ID,
						Key:      "kleinunternehmer",
						Question: "Soll die Kleinunternehmerregelung (§19 UStG) angewendet werden?",
						OptionA:  "Ja - keine USt auf Rechnungen, kein Vorsteuerabzug, einfachere Buchhaltung",
						OptionB:  "Nein - USt wird ausgewiesen, Vorsteuerabzug möglich, professioneller bei B2B-Kunden",
					}
					if err := tx.Create(&dp).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.Progress(userID)
}

// Progress returns the checklist with completion counters.
func (s *onboardingService) Progress(userID string) (*OnboardingProgress, error) {
	var steps []models.RegistrationStep
	if err := s.db.Where("user_id = ?", userID).Order("step_number").Find(&steps).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(steps) == 0 {
		return nil, apperrors.ErrOnboardingNotFound
	}

	var decisions []models.DecisionPoint
	if err := s.db.Where("user_id = ?", userID).Find(&decisions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byStep := make(map[string][]models.DecisionPoint)
	for _, d := range decisions {
		byStep[d.StepID] = append(byStep[d.StepID], d)
	}

	statuses := make(map[int]models.StepStatus, len(steps))
	for _, step := range steps {
		statuses[step.StepNumber] = step.Status
	}

	progress := &OnboardingProgress{Total: len(steps)}
	for _, step := range steps {
		switch step.Status {
		case models.StepCompleted:
			progress.Completed++
		case models.StepInProgress:
			progress.InProgress++
		case models.StepSkipped:
			progress.Skipped++
		}
		ds := byStep[step.ID]
		if ds == nil {
			ds = []models.DecisionPoint{}
		}
		progress.Steps = append(progress.Steps, StepWithDecisions{
			RegistrationStep: step,
			EffectiveStatus:  step.EffectiveStatus(statuses),
			Decisions:        ds,
		})
	}
	if progress.Total > 0 {
		progress.Percent = progress.Completed * 100 / progress.Total
	}
	return progress, nil
}

// StartStep moves a step to IN_PROGRESS once all its dependencies are done.
func (s *onboardingService) StartStep(userID string, stepNumber int) (*StepWithDecisions, error) {
	step, err := s.findStep(userID, stepNumber)
	if err != nil {
		return nil, err
	}

	if step.Status != models.StepNotStarted {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState,
			fmt.Sprintf("Step %d cannot be started from status %s", stepNumber, step.Status))
	}

	if err := s.checkDependencies(userID, step); err != nil {
		return nil, err
	}

	if err := s.updateVersioned(step, map[string]interface{}{"status": models.StepInProgress}); err != nil {
		return nil, err
	}
	return s.stepWithDecisions(step)
}

// CompleteStep marks an in-progress step as done. Undecided decision points
// do not block completion; the recommendation is advisory.
func (s *onboardingService) CompleteStep(userID string, stepNumber int) (*StepWithDecisions, error) {
	step, err := s.findStep(userID, stepNumber)
	if err != nil {
		return nil, err
	}

	if step.Status != models.StepInProgress {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState,
			fmt.Sprintf("Step %d cannot be completed from status %s", stepNumber, step.Status))
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.StepCompleted,
		"completed_at": now,
	}
	if err := s.updateVersioned(step, updates); err != nil {
		return nil, err
	}
	return s.stepWithDecisions(step)
}

// SkipStep marks an optional step as skipped.
func (s *onboardingService) SkipStep(userID string, stepNumber int) (*StepWithDecisions, error) {
	step, err := s.findStep(userID, stepNumber)
	if err != nil {
		return nil, err
	}

	if !step.Optional {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState,
			fmt.Sprintf("Step %d is mandatory and cannot be skipped", stepNumber))
	}
	if step.Status == models.StepCompleted || step.Status == models.StepSkipped {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState,
			fmt.Sprintf("Step %d cannot be skipped from status %s", stepNumber, step.Status))
	}

	if err := s.updateVersioned(step, map[string]interface{}{"status": models.StepSkipped}); err != nil {
		return nil, err
	}
	return s.stepWithDecisions(step)
}

// Decide records the user's choice on a decision point. Re-deciding is
// allowed; every decision stamps a fresh decided_at.
func (s *onboardingService) Decide(userID, decisionID, choice string) (*models.DecisionPoint, error) {
	if choice != calculator.OptionKleinunternehmer && choice != calculator.OptionRegelbesteuerung {
		return nil, apperrors.WithMessage(apperrors.ErrValidation,
			fmt.Sprintf("choice must be %s or %s", calculator.OptionKleinunternehmer, calculator.OptionRegelbesteuerung))
	}

	var dp models.DecisionPoint
	if err := s.db.Where("id = ? AND user_id = ?", decisionID, userID).First(&dp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDecisionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"user_choice": choice,
		"decided_at":  now,
	}
	if err := s.db.Model(&dp).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &dp, nil
}

// EvaluateKleinunternehmer runs the decision engine on the user's current
// ledger and stores the recommendation on the decision point if one exists.
func (s *onboardingService) EvaluateKleinunternehmer(userID string, year int) (*calculator.DecisionResult, error) {
	params, err := taxrates.ForYear(year)
	if err != nil {
		return nil, err
	}

	observed, err := sumIncome(s.db, userID, models.SelfEmployedStreams, year)
	if err != nil {
		return nil, err
	}

	var clients []models.Client
	if err := s.db.Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	b2b, b2c, err := s.revenueByClientType(userID, year, clients)
	if err != nil {
		return nil, err
	}

	var expenseCents int64
	err = s.db.Model(&models.ExpenseEntry{}).
		Where("user_id = ? AND entry_date >= ? AND entry_date < ?",
			userID,
			time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&expenseCents).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	months := monthsElapsed(year, time.Now())
	status := calculator.Kleinunternehmer(params, observed, months)

	result := calculator.EvaluateKleinunternehmer(params, calculator.DecisionInput{
		B2BRevenue:        b2b,
		B2CRevenue:        b2c,
		AnnualExpenses:    calculator.FromCents(expenseCents),
		ObservedRevenue:   observed,
		AnnualizedRevenue: status.AnnualizedRevenue,
	})

	// Persist the recommendation on the stored decision point, if the
	// checklist has been initialized.
	var dp models.DecisionPoint
	err = s.db.Where("user_id = ? AND key = ?", userID, "kleinunternehmer").First(&dp).Error
	if err == nil {
		updates := map[string]interface{}{
			"recommendation":        result.Recommendation,
			"recommendation_reason": strings.Join(result.Reasons, " "),
		}
		if err := s.db.Model(&dp).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &result, nil
}

func (s *onboardingService) revenueByClientType(userID string, year int, clients []models.Client) (b2b, b2c decimal.Decimal, err error) {
	clientType := make(map[string]models.ClientType, len(clients))
	for _, c := range clients {
		clientType[c.ID] = c.ClientType
	}

	var entries []models.IncomeEntry
	qerr := s.db.Where("user_id = ? AND stream IN ? AND entry_date >= ? AND entry_date < ?",
		userID, models.SelfEmployedStreams,
		time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)).
		Find(&entries).Error
	if qerr != nil {
		return decimal.Zero, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, qerr)
	}

	for _, e := range entries {
		amount := calculator.FromCents(e.AmountCents)
		if e.ClientID != nil && clientType[*e.ClientID] == models.ClientB2B {
			b2b = b2b.Add(amount)
		} else {
			b2c = b2c.Add(amount)
		}
	}
	return b2b, b2c, nil
}

func (s *onboardingService) findStep(userID string, stepNumber int) (*models.RegistrationStep, error) {
	var step models.RegistrationStep
	err := s.db.Where("user_id = ? AND step_number = ?", userID, stepNumber).First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStepNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &step, nil
}

// checkDependencies verifies that every dependency step is completed or, for
// optional dependencies, skipped.
func (s *onboardingService) checkDependencies(userID string, step *models.RegistrationStep) error {
	for _, depNumber := range step.Dependencies {
		dep, err := s.findStep(userID, depNumber)
		if err != nil {
			return err
		}
		if !models.DependencySatisfied(dep.Status) {
			return apperrors.WithMessage(apperrors.ErrDependencyUnmet,
				fmt.Sprintf("Step %d depends on step %d which is %s", step.StepNumber, depNumber, dep.Status))
		}
	}
	return nil
}

// updateVersioned applies updates guarded by the optimistic version column.
// A concurrent writer that got there first turns this into a CONFLICT.
func (s *onboardingService) updateVersioned(step *models.RegistrationStep, updates map[string]interface{}) error {
	updates["version"] = step.Version + 1
	res := s.db.Model(&models.RegistrationStep{}).
		Where("id = ? AND version = ?", step.ID, step.Version).
		Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.WithMessage(apperrors.ErrConflict, "The step was modified concurrently, reload and retry")
	}
	return nil
}

func (s *onboardingService) stepWithDecisions(step *models.RegistrationStep) (*StepWithDecisions, error) {
	var fresh models.RegistrationStep
	if err := s.db.First(&fresh, "id = ?", step.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var decisions []models.DecisionPoint
	if err := s.db.Where("step_id = ?", fresh.ID).Find(&decisions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if decisions == nil {
		decisions = []models.DecisionPoint{}
	}

	var siblings []models.RegistrationStep
	if err := s.db.Select("step_number", "status").Where("user_id = ?", fresh.UserID).Find(&siblings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	statuses := make(map[int]models.StepStatus, len(siblings))
	for _, sib := range siblings {
		statuses[sib.StepNumber] = sib.Status
	}

	return &StepWithDecisions{
		RegistrationStep: fresh,
		EffectiveStatus:  fresh.EffectiveStatus(statuses),
		Decisions:        decisions,
	}, nil
}
