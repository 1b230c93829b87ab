package worker

import (
	"context"
	"fmt"
	"time"

	"agencyops/models"
	"agencyops/services"
	"agencyops/utils"

	"github.com/sirupsen/logrus"
)

const notifyBatchSize = 200

// TaskNotifier emails agents about tasks newly assigned to them, one email
// per agent per pass.
type TaskNotifier struct {
	Tasks    *services.TaskService
	Mailer   utils.MailSender
	AppName  string
	Interval time.Duration
	Logger   *logrus.Entry
	now      func() time.Time
}

func NewTaskNotifier(tasks *services.TaskService, mailer utils.MailSender, appName string, interval time.Duration, logger *logrus.Entry) *TaskNotifier {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &TaskNotifier{
		Tasks:    tasks,
		Mailer:   mailer,
		AppName:  appName,
		Interval: interval,
		Logger:   logger,
		now:      time.Now,
	}
}

func (tn *TaskNotifier) Start(ctx context.Context) {
	tn.Logger.WithField("interval", tn.Interval.String()).Info("Task notifier started")
	ticker := time.NewTicker(tn.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tn.Logger.Info("Task notifier shutting down...")
			return
		case <-ticker.C:
			tn.Notify(ctx)
		}
	}
}

type taskLine struct {
	Name     string
	Client   string
	Priority string
	Due      string
}

type digest struct {
	agent *models.User
	lines []taskLine
	ids   []string
}

// Notify sends one pass of digests and returns the number of emails sent.
// Tasks are only marked notified once their email went out.
func (tn *TaskNotifier) Notify(ctx context.Context) int {
	tasks, err := tn.Tasks.PendingNotifications(ctx, notifyBatchSize)
	if err != nil {
		tn.Logger.WithError(err).Error("Error fetching tasks to notify")
		return 0
	}

	var order []string
	byAgent := make(map[string]*digest)
	for _, task := range tasks {
		if task.Assignee == nil || task.Assignee.Email == "" {
			continue
		}
		d, ok := byAgent[task.Assignee.ID]
		if !ok {
			d = &digest{agent: task.Assignee}
			byAgent[task.Assignee.ID] = d
			order = append(order, task.Assignee.ID)
		}
		line := taskLine{Name: task.Name, Priority: string(task.Priority), Due: "-"}
		if task.Client != nil {
			line.Client = task.Client.Name
		}
		if task.DueDate != nil {
			line.Due = task.DueDate.Format("Jan 2, 2006")
		}
		d.lines = append(d.lines, line)
		d.ids = append(d.ids, task.ID)
	}

	sent := 0
	for _, agentID := range order {
		d := byAgent[agentID]
		err := tn.Mailer.Send(utils.EmailData{
			Subject:  fmt.Sprintf("%d new task(s) assigned to you", len(d.lines)),
			To:       []string{d.agent.Email},
			Template: "task_assigned",
			Data: map[string]interface{}{
				"Subject":   "New tasks assigned",
				"AgentName": d.agent.Name,
				"Tasks":     d.lines,
				"Year":      tn.now().Year(),
				"AppName":   tn.AppName,
			},
		})
		if err != nil {
			utils.LogError("task_notification", err, map[string]interface{}{
				"agent_id": agentID,
				"tasks":    len(d.ids),
			})
			continue
		}
		if err := tn.Tasks.MarkNotified(ctx, d.ids, tn.now()); err != nil {
			tn.Logger.WithError(err).Error("Error marking tasks notified")
			continue
		}
		sent++
	}
	if sent > 0 {
		tn.Logger.WithField("emails", sent).Info("Task notifications sent")
	}
	return sent
}
