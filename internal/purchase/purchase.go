// Package purchase turns a user's shopping carts into a completed purchase.
//
// For every cart owned by the caller a confirmation is handed to the
// notifier and the cart is deleted. Books referenced by the carts stay in
// the catalog. Notification failures never stop a deletion.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database/carts"
	"github.com/mrlokans/bookstore/internal/entities"
)

const (
	// Details is the description carried by every purchase notification.
	Details = "Books Purchased"

	MessageSuccessful = "Purchase successful"
	MessageNoBook     = "No Book"
)

// CartStore provides the cart operations the workflow needs.
type CartStore interface {
	ListCartsForUser(userID uint) ([]entities.ShoppingCart, error)
	DeleteCart(id uint) error
}

// Notifier hands a confirmation off for delivery.
type Notifier interface {
	NotifyPurchase(ctx context.Context, email, details string) (string, error)
}

// Result describes the outcome of a purchase.
type Result struct {
	Message         string
	CartsPurchased  int
	NotificationIDs []string
}

// Workflow orchestrates reading, notifying and deleting carts.
type Workflow struct {
	carts    CartStore
	notifier Notifier
}

func NewWorkflow(store CartStore, notifier Notifier) *Workflow {
	return &Workflow{carts: store, notifier: notifier}
}

// Purchase completes every cart of the caller. A caller without carts gets
// MessageNoBook and nothing is changed.
func (w *Workflow) Purchase(ctx context.Context, caller auth.Identity) (*Result, error) {
	owned, err := w.carts.ListCartsForUser(caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list carts of user %d: %w", caller.UserID, err)
	}
	if len(owned) == 0 {
		return &Result{Message: MessageNoBook}, nil
	}

	result := &Result{Message: MessageSuccessful}
	for _, cart := range owned {
		id, err := w.notifier.NotifyPurchase(ctx, caller.Email, Details)
		if err != nil {
			log.Printf("[PURCHASE ERROR] notification for cart %d of user %d: %v", cart.ID, caller.UserID, err)
		} else {
			result.NotificationIDs = append(result.NotificationIDs, id)
		}

		if err := w.carts.DeleteCart(cart.ID); err != nil {
			// Already gone, e.g. a concurrent purchase by the same user.
			if errors.Is(err, carts.ErrCartNotFound) {
				continue
			}
			return nil, fmt.Errorf("delete cart %d: %w", cart.ID, err)
		}
		result.CartsPurchased++
	}

	log.Printf("[PURCHASE] User %d purchased %d cart(s)", caller.UserID, result.CartsPurchased)
	return result, nil
}
