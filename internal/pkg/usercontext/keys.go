package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyAccountContext = "ACCOUNT_CONTEXT"
	KeyAccountID      = "account_id"
)
