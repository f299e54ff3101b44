package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
)

// AuditRepository stores audit trail entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *entity.AuditLog) error
}
