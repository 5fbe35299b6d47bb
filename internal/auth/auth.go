// Package auth decides who may change the movement log.
//
// Every caller is identified by a signed token carrying a subject and a role.
// Recording new movements is open to operators; editing, voiding and managing
// accounts needs the admin role.
package auth

import (
	"context"
	"errors"
	"slices"
)

var (
	ErrUnauthenticated = errors.New("missing or invalid credentials")
	ErrForbidden       = errors.New("not allowed")
	ErrUnknownRole     = errors.New("unknown role")
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

type Capability string

const (
	CapRecordMovements Capability = "movements:record"
	CapEditMovements   Capability = "movements:edit"
	CapVoidMovements   Capability = "movements:void"
	CapManageAccounts  Capability = "accounts:manage"
)

var capabilities = map[Role][]Capability{
	RoleAdmin:    {CapRecordMovements, CapEditMovements, CapVoidMovements, CapManageAccounts},
	RoleOperator: {CapRecordMovements},
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

func (r Role) Can(c Capability) bool {
	return slices.Contains(capabilities[r], c)
}

// Identity is the authenticated caller.
type Identity struct {
	Subject string
	Role    Role
}

func (i Identity) Can(c Capability) bool {
	return i.Role.Can(c)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Check returns ErrUnauthenticated without an identity in ctx and ErrForbidden
// when the identity lacks c.
func Check(ctx context.Context, c Capability) error {
	id, ok := FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	if !id.Can(c) {
		return ErrForbidden
	}

	return nil
}
