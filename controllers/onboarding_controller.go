package controller

import (
	"agencyops/middleware"
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type OnboardingController struct {
	Onboarding *services.OnboardingService
}

func NewOnboardingController(onboarding *services.OnboardingService) *OnboardingController {
	return &OnboardingController{Onboarding: onboarding}
}

func currentUserID(c *fiber.Ctx) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

func (oc *OnboardingController) GetDraft(c *fiber.Ctx) error {
	draft, err := oc.Onboarding.LoadDraft(c.UserContext(), currentUserID(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(draft)
}

// SaveDraft replaces the caller's draft with the body.
func (oc *OnboardingController) SaveDraft(c *fiber.Ctx) error {
	var draft services.Draft
	if err := c.BodyParser(&draft); err != nil {
		return utils.BadRequest(c)
	}
	saved, err := oc.Onboarding.SaveDraft(c.UserContext(), currentUserID(c), &draft)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(saved)
}

func (oc *OnboardingController) DiscardDraft(c *fiber.Ctx) error {
	if err := oc.Onboarding.DiscardDraft(c.UserContext(), currentUserID(c)); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Onboarding draft discarded")
}

func (oc *OnboardingController) NextStep(c *fiber.Ctx) error {
	draft, err := oc.Onboarding.Next(c.UserContext(), currentUserID(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(draft)
}

func (oc *OnboardingController) PreviousStep(c *fiber.Ctx) error {
	draft, err := oc.Onboarding.Previous(c.UserContext(), currentUserID(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(draft)
}

// Submit creates the client from the stored draft, or from a full draft in
// the body. A failed template assignment is returned as a warning.
func (oc *OnboardingController) Submit(c *fiber.Ctx) error {
	var draft *services.Draft
	if len(c.Body()) > 0 {
		draft = &services.Draft{}
		if err := c.BodyParser(draft); err != nil {
			return utils.BadRequest(c)
		}
	}
	result, err := oc.Onboarding.Submit(c.UserContext(), currentUserID(c), draft)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
