// Package notifications hands purchase confirmations off the request path.
//
// A Dispatcher only promises that the message was handed over. Delivery,
// retries and failure logging happen elsewhere and are never reported back
// to the caller.
package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore/internal/mail"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// Dispatcher accepts purchase notifications and returns without waiting for delivery.
type Dispatcher interface {
	NotifyPurchase(ctx context.Context, email, details string) (string, error)
}

// Enqueuer persists a task for background processing.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// QueueDispatcher enqueues a purchase_notification task per call.
type QueueDispatcher struct {
	queue Enqueuer
}

func NewQueueDispatcher(queue Enqueuer) *QueueDispatcher {
	return &QueueDispatcher{queue: queue}
}

// NotifyPurchase returns the id of the enqueued task.
func (d *QueueDispatcher) NotifyPurchase(_ context.Context, email, details string) (string, error) {
	id, err := d.queue.Enqueue(tasks.PurchaseNotificationTask{Email: email, Details: details})
	if err != nil {
		return "", fmt.Errorf("enqueue purchase notification: %w", err)
	}
	return id, nil
}

// AsyncDispatcher sends mail from a goroutine. It is used when the task
// queue is disabled and offers no retries.
type AsyncDispatcher struct {
	mailer  mail.Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(mailer mail.Mailer, timeout time.Duration) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &AsyncDispatcher{mailer: mailer, timeout: timeout}
}

// NotifyPurchase starts delivery and returns a generated reference id.
// Delivery outlives the caller's context.
func (d *AsyncDispatcher) NotifyPurchase(_ context.Context, email, details string) (string, error) {
	id := uuid.NewString()
	msg := mail.PurchaseMessage(email, details)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, msg); err != nil {
			log.Printf("[NOTIFY ERROR] purchase notification %s to %s: %v", id, email, err)
			return
		}
		log.Printf("[NOTIFY] Sent purchase notification %s to %s", id, email)
	}()

	return id, nil
}

// Wait blocks until every started delivery has finished.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
