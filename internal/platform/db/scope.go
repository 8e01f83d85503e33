package db

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// RequestScope carries actor and request identity into the ballot store so
// store-side audit triggers can read who performed a change. Values are set
// with transaction-local set_config and therefore cannot leak into other
// transactions on the same pooled connection.
type RequestScope struct {
	ActorUserID    string
	OrganizationID string
	RequestID      string
}

type scopeContextKey struct{}

func WithScope(ctx context.Context, scope RequestScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

func ScopeFromContext(ctx context.Context) RequestScope {
	scope, _ := ctx.Value(scopeContextKey{}).(RequestScope)
	return scope
}

// InRequestScope runs fn inside one transaction with the request scope
// applied as Postgres session context. The transaction rolls back on any
// error from fn, leaving no partial effects.
func InRequestScope(ctx context.Context, gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	scope := ScopeFromContext(ctx)
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyScope(tx, scope); err != nil {
			return err
		}
		return fn(tx)
	})
}

func applyScope(tx *gorm.DB, scope RequestScope) error {
	settings := []struct {
		name  string
		value string
	}{
		{"app.actor_user_id", strings.TrimSpace(scope.ActorUserID)},
		{"app.organization_id", strings.TrimSpace(scope.OrganizationID)},
		{"app.request_id", strings.TrimSpace(scope.RequestID)},
	}
	for _, setting := range settings {
		if err := tx.Exec("SELECT set_config(?, ?, true)", setting.name, setting.value).Error; err != nil {
			return err
		}
	}
	return nil
}
