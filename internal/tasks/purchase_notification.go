package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore/internal/mail"
)

const PurchaseNotificationQueue = "purchase_notification"

// PurchaseNotificationTask emails a purchase confirmation to one recipient.
type PurchaseNotificationTask struct {
	Email   string `json:"email"`
	Details string `json:"details"`
}

// Config returns the queue configuration for purchase notifications.
func (t PurchaseNotificationTask) Config() backlite.QueueConfig {
	return queueConfig(PurchaseNotificationQueue)
}

// PurchaseNotificationProcessor creates a processor that delivers through mailer.
func PurchaseNotificationProcessor(mailer mail.Mailer) backlite.QueueProcessor[PurchaseNotificationTask] {
	return func(ctx context.Context, task PurchaseNotificationTask) error {
		if mailer == nil {
			return fmt.Errorf("mailer not configured")
		}
		if task.Email == "" {
			// Nothing to deliver; retrying will not help.
			log.Printf("[TASK] Skipping purchase notification without recipient")
			return nil
		}

		if err := mailer.Send(ctx, mail.PurchaseMessage(task.Email, task.Details)); err != nil {
			return fmt.Errorf("purchase notification to %s: %w", task.Email, err)
		}

		log.Printf("[TASK] Sent purchase notification to %s", task.Email)
		return nil
	}
}

// NewPurchaseNotificationQueue creates a backlite queue for purchase notifications.
func NewPurchaseNotificationQueue(mailer mail.Mailer) backlite.Queue {
	return backlite.NewQueue(PurchaseNotificationProcessor(mailer))
}
