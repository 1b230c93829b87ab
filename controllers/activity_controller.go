package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type ActivityController struct {
	Activity *services.ActivityService
	Logger   *logrus.Entry
}

func NewActivityController(activity *services.ActivityService) *ActivityController {
	return &ActivityController{Activity: activity, Logger: utils.Logger("activity")}
}

func (ac *ActivityController) GetActivities(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid from date"))
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return utils.HandleError(c, utils.NewValidationError("Invalid to date"))
	}
	entries, err := ac.Activity.List(c.UserContext(), services.ActivityFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		UserID:     c.Query("userId"),
		Search:     c.Query("search"),
		From:       from,
		To:         to,
		Limit:      queryInt(c, "limit", 100),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(entries)
}

// UpgradeWS only lets websocket upgrade requests through to the feed.
func (ac *ActivityController) UpgradeWS(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// StreamActivities pushes each new activity entry to the socket as JSON
// until the client disconnects.
func (ac *ActivityController) StreamActivities(conn *websocket.Conn) {
	defer conn.Close()

	entries, unsubscribe := ac.Activity.Hub().Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				ac.Logger.WithError(err).Debug("Activity stream closed")
				return
			}
		}
	}
}
