package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditRecord is one row of the ledger audit trail. Records are written in
// the same transaction as the ledger write they describe.
type AuditRecord struct {
	ID            int64
	TenantID      string
	Operation     string
	Reference     string
	TransactionID string
	Details       string
	LoggedAt      time.Time
}

func insertAudit(ctx context.Context, tx *sql.Tx, tenantID, operation, reference, transactionID, details string) error {
	if operation == "" {
		operation = "post"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (tenant_id, operation, reference, transaction_id, details)
		VALUES (?, ?, ?, ?, ?)
	`, tenantID, operation, reference, transactionID, details)
	if err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Audit returns a tenant's most recent audit records, newest first.
func (s *Store) Audit(ctx context.Context, tenantID string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT id, tenant_id, operation, reference, transaction_id, details, logged_at
		FROM audit_log WHERE tenant_id = ? ORDER BY id DESC LIMIT ?
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var result []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var loggedStr string
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Operation, &rec.Reference, &rec.TransactionID, &rec.Details, &loggedStr); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		rec.LoggedAt, _ = time.Parse("2006-01-02 15:04:05", loggedStr)
		result = append(result, rec)
	}
	return result, rows.Err()
}
