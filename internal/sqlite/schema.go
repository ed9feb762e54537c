package sqlite

// Migrations returns the schema migration statements, one SQL statement per
// string (sqlite executes them one at a time). Amounts are stored as exact
// two-decimal strings and summed in Go with decimals, never as REAL.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id      TEXT NOT NULL,
			code           TEXT NOT NULL,
			name           TEXT NOT NULL,
			type           TEXT NOT NULL,
			normal_balance TEXT NOT NULL,
			core           INTEGER NOT NULL DEFAULT 0,
			UNIQUE(tenant_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			tenant_id   TEXT NOT NULL,
			tx_date     TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			reference   TEXT NOT NULL,
			amount      TEXT NOT NULL DEFAULT '0',
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(tenant_id, reference)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_tenant_date ON transactions(tenant_id, tx_date)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_id    TEXT NOT NULL REFERENCES transactions(id),
			debit_account_id  INTEGER REFERENCES accounts(id),
			credit_account_id INTEGER REFERENCES accounts(id),
			amount            TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_transaction ON entries(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_debit ON entries(debit_account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_credit ON entries(credit_account_id)`,

		// Human-assigned document numbers (invoice numbers, vendor invoice
		// numbers). Distinct from the idempotency reference: a new reference
		// reusing a number is a conflict, not a replay.
		`CREATE TABLE IF NOT EXISTS documents (
			tenant_id      TEXT NOT NULL,
			doc_type       TEXT NOT NULL,
			doc_number     TEXT NOT NULL,
			transaction_id TEXT NOT NULL REFERENCES transactions(id),
			PRIMARY KEY (tenant_id, doc_type, doc_number)
		)`,

		`CREATE TABLE IF NOT EXISTS assets (
			id                 TEXT PRIMARY KEY,
			tenant_id          TEXT NOT NULL,
			name               TEXT NOT NULL,
			category           TEXT NOT NULL DEFAULT '',
			unique_key         TEXT NOT NULL,
			acquisition_date   TEXT NOT NULL,
			in_service_date    TEXT NOT NULL,
			cost               TEXT NOT NULL,
			residual_value     TEXT NOT NULL DEFAULT '0',
			method             TEXT NOT NULL DEFAULT 'SL',
			useful_life_months INTEGER NOT NULL,
			status             TEXT NOT NULL DEFAULT 'ACTIVE',
			UNIQUE(tenant_id, unique_key)
		)`,

		`CREATE TABLE IF NOT EXISTS depreciation_events (
			asset_id       TEXT NOT NULL REFERENCES assets(id),
			period         TEXT NOT NULL,
			amount         TEXT NOT NULL,
			transaction_id TEXT NOT NULL REFERENCES transactions(id),
			PRIMARY KEY (asset_id, period)
		)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant_id      TEXT NOT NULL,
			operation      TEXT NOT NULL,
			reference      TEXT NOT NULL DEFAULT '',
			transaction_id TEXT NOT NULL DEFAULT '',
			details        TEXT NOT NULL DEFAULT '',
			logged_at      TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_tenant ON audit_log(tenant_id, logged_at)`,
	}
}
