package usercontext

import "github.com/gofiber/fiber/v2"

// AccountContext is the authenticated caller of a request
type AccountContext struct {
	AccountID       uint   `json:"account_id"`
	Name            string `json:"name"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Set stores the account context on the request
func Set(c *fiber.Ctx, ac AccountContext) {
	c.Locals(KeyAccountContext, ac)
	c.Locals(KeyAccountID, ac.AccountID)
}

// Get retrieves the account context from fiber context.
// Returns an anonymous context if none is set
func Get(c *fiber.Ctx) AccountContext {
	if ac, ok := c.Locals(KeyAccountContext).(AccountContext); ok {
		return ac
	}
	return AccountContext{}
}

// GetAccountID returns the current account's ID, or 0 if unauthenticated
func GetAccountID(c *fiber.Ctx) uint {
	return Get(c).AccountID
}
