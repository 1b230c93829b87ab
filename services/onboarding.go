package services

import (
	"context"
	"strings"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

type OnboardingStep string

const (
	StepGeneralInfo       OnboardingStep = "general_info"
	StepPackageSelection  OnboardingStep = "package_selection"
	StepTemplateSelection OnboardingStep = "template_selection"
	StepReview            OnboardingStep = "review"
)

var onboardingSteps = []OnboardingStep{StepGeneralInfo, StepPackageSelection, StepTemplateSelection, StepReview}

func stepIndex(step OnboardingStep) int {
	for i, s := range onboardingSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// Draft is the accumulated state of one onboarding session.
type Draft struct {
	Step       OnboardingStep `json:"step"`
	General    ClientInput    `json:"general"`
	PackageID  string         `json:"packageId"`
	TemplateID string         `json:"templateId"`
}

func NewDraft() *Draft {
	return &Draft{Step: StepGeneralInfo}
}

// stepComplete reports whether the draft holds what step needs before the
// wizard may move past it.
func (d *Draft) stepComplete(step OnboardingStep) bool {
	switch step {
	case StepGeneralInfo:
		return strings.TrimSpace(d.General.Name) != ""
	case StepPackageSelection:
		return d.PackageID != ""
	case StepTemplateSelection:
		return d.TemplateID != ""
	default:
		return false
	}
}

func stepGateError(step OnboardingStep) error {
	switch step {
	case StepGeneralInfo:
		return utils.NewValidationError("Client name is required")
	case StepPackageSelection:
		return utils.NewValidationError("Select a package to continue")
	default:
		return utils.NewValidationError("Select a template to continue")
	}
}

// CanAdvance reports whether the current step has what it needs to move on.
func (d *Draft) CanAdvance() bool {
	return d.stepComplete(d.Step)
}

func (d *Draft) Next() error {
	if d.Step == StepReview {
		return utils.NewValidationError("Onboarding is already at the review step")
	}
	if !d.CanAdvance() {
		return stepGateError(d.Step)
	}
	d.Step = onboardingSteps[stepIndex(d.Step)+1]
	return nil
}

// checkReachable fails when the draft claims a step whose earlier steps are
// incomplete, reporting the first incomplete one.
func (d *Draft) checkReachable() error {
	for _, step := range onboardingSteps[:stepIndex(d.Step)] {
		if !d.stepComplete(step) {
			return stepGateError(step)
		}
	}
	return nil
}

func (d *Draft) Previous() {
	if i := stepIndex(d.Step); i > 0 {
		d.Step = onboardingSteps[i-1]
	}
}

// SelectPackage chooses a package. A different package clears the template.
func (d *Draft) SelectPackage(id string) {
	id = strings.TrimSpace(id)
	if id != d.PackageID {
		d.TemplateID = ""
	}
	d.PackageID = id
}

func (d *Draft) SelectTemplate(id string) error {
	if d.PackageID == "" {
		return utils.NewValidationError("Select a package before choosing a template")
	}
	d.TemplateID = strings.TrimSpace(id)
	return nil
}

func (d *Draft) normalize() error {
	if d.Step == "" {
		d.Step = StepGeneralInfo
	}
	if stepIndex(d.Step) < 0 {
		return utils.NewValidationError("Invalid onboarding step %q", d.Step)
	}
	d.PackageID = strings.TrimSpace(d.PackageID)
	d.TemplateID = strings.TrimSpace(d.TemplateID)
	if d.TemplateID != "" && d.PackageID == "" {
		return utils.NewValidationError("Select a package before choosing a template")
	}
	return nil
}

type SubmitResult struct {
	Client     *models.Client     `json:"client"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	Warning    string             `json:"warning,omitempty"`
}

// Submit creates the client and then, when a template is chosen, its
// assignment. An assignment failure is reported as a warning and the client
// is kept.
func (d *Draft) Submit(ctx context.Context, clients *ClientService, assignments *AssignmentService) (*SubmitResult, error) {
	if d.Step != StepReview {
		return nil, utils.NewValidationError("Onboarding must reach the review step before submitting")
	}
	if err := d.checkReachable(); err != nil {
		return nil, err
	}
	in := d.General
	if d.PackageID != "" {
		pkg := d.PackageID
		in.PackageID = &pkg
	}
	client, err := clients.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	result := &SubmitResult{Client: client}
	if d.TemplateID == "" {
		return result, nil
	}
	assignment, err := assignments.Create(ctx, AssignmentInput{TemplateID: d.TemplateID, ClientID: client.ID})
	if err != nil {
		utils.LogEvent("onboarding_assignment_failed", map[string]interface{}{
			"clientId":   client.ID,
			"templateId": d.TemplateID,
			"error":      err.Error(),
		})
		result.Warning = "Client created but template assignment failed: " + err.Error()
		return result, nil
	}
	result.Assignment = assignment
	return result, nil
}

type OnboardingService struct {
	db          *gorm.DB
	store       DraftStore
	clients     *ClientService
	assignments *AssignmentService
}

func NewOnboardingService(db *gorm.DB, store DraftStore, clients *ClientService, assignments *AssignmentService) *OnboardingService {
	return &OnboardingService{db: db, store: store, clients: clients, assignments: assignments}
}

// LoadDraft returns the user's stored draft or a fresh one.
func (s *OnboardingService) LoadDraft(ctx context.Context, userID string) (*Draft, error) {
	d, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load onboarding draft", err)
	}
	if d == nil {
		d = NewDraft()
	}
	return d, nil
}

// validateDraft checks a draft arriving from a client or the store: its
// step must be reachable, its package must exist and its template must
// belong to that package.
func (s *OnboardingService) validateDraft(ctx context.Context, d *Draft) error {
	if err := d.normalize(); err != nil {
		return err
	}
	if err := d.checkReachable(); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if d.PackageID != "" {
		ok, err := exists(db, &models.Package{}, d.PackageID)
		if err != nil {
			return utils.NewInternalError("Failed to check package", err)
		}
		if !ok {
			return utils.NewNotFoundError("Package not found")
		}
	}
	if d.TemplateID != "" {
		var count int64
		err := db.Model(&models.Template{}).
			Where("id = ? AND package_id = ?", d.TemplateID, d.PackageID).Count(&count).Error
		if err != nil {
			return utils.NewInternalError("Failed to check template", err)
		}
		if count == 0 {
			return utils.NewValidationError("Template does not belong to the selected package")
		}
	}
	return nil
}

// SaveDraft validates and stores a draft, replacing any previous one.
func (s *OnboardingService) SaveDraft(ctx context.Context, userID string, d *Draft) (*Draft, error) {
	if err := s.validateDraft(ctx, d); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, d); err != nil {
		return nil, utils.NewInternalError("Failed to save onboarding draft", err)
	}
	return d, nil
}

func (s *OnboardingService) DiscardDraft(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return utils.NewInternalError("Failed to discard onboarding draft", err)
	}
	return nil
}

func (s *OnboardingService) Next(ctx context.Context, userID string) (*Draft, error) {
	d, err := s.LoadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := d.Next(); err != nil {
		return nil, err
	}
	return s.SaveDraft(ctx, userID, d)
}

func (s *OnboardingService) Previous(ctx context.Context, userID string) (*Draft, error) {
	d, err := s.LoadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Previous()
	return s.SaveDraft(ctx, userID, d)
}

// Submit finishes onboarding with the given draft, or the stored one when d
// is nil. Either is validated like a saved draft. The stored draft is
// cleared once the client exists.
func (s *OnboardingService) Submit(ctx context.Context, userID string, d *Draft) (*SubmitResult, error) {
	if d == nil {
		var err error
		if d, err = s.LoadDraft(ctx, userID); err != nil {
			return nil, err
		}
	}
	if err := s.validateDraft(ctx, d); err != nil {
		return nil, err
	}
	result, err := d.Submit(ctx, s.clients, s.assignments)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		utils.LogError("onboarding_draft_clear", err, map[string]interface{}{"userId": userID})
	}
	return result, nil
}
