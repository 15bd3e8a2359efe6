package server

import "context"

type accountKey struct{}

// WithAccount returns a context that carries the account a request acts as
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the account set by WithAccount
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountKey{}).(string)
	return account, ok && account != ""
}
