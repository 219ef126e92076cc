package domain

import "time"

// AuditAction names a security-relevant operation.
type AuditAction string

const (
	AuditRegister       AuditAction = "register"
	AuditLogin          AuditAction = "login"
	AuditUserDelete     AuditAction = "user_delete"
	AuditRoleChange     AuditAction = "role_change"
	AuditOwnershipCheck AuditAction = "ownership_check"
	AuditProductUpdate  AuditAction = "admin_product_update"
	AuditProductDelete  AuditAction = "admin_product_delete"
)

const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)

// AuditEvent records who attempted what against which target.
type AuditEvent struct {
	Action   AuditAction
	ActorID  string // empty for anonymous attempts
	TargetID string
	Outcome  string
	Detail   string
	At       time.Time
}
