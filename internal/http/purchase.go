package http

import (
	"github.com/gin-gonic/gin"
)

type PurchaseController struct {
	purchases Purchaser
	audit     Auditor
}

func NewPurchaseController(purchases Purchaser, audit Auditor) *PurchaseController {
	return &PurchaseController{purchases: purchases, audit: audit}
}

// Purchase handles GET /purchase/. Both outcomes are 200: either every cart
// of the caller was purchased or there was nothing to buy.
func (pc *PurchaseController) Purchase(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	result, err := pc.purchases.Purchase(c.Request.Context(), caller)
	if err != nil {
		respondInternalError(c, err, "purchase")
		return
	}
	if pc.audit != nil && result.CartsPurchased > 0 {
		pc.audit.LogPurchase(caller.UserID, result.CartsPurchased, result.NotificationIDs)
	}
	respondMessage(c, result.Message)
}
