package store

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL DEFAULT '',
    mobile_number TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS accounts (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    type       TEXT NOT NULL DEFAULT 'CURRENT',
    balance    REAL NOT NULL DEFAULT 0,
    is_default INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);

CREATE TABLE IF NOT EXISTS transactions (
    id                  TEXT PRIMARY KEY,
    user_id             TEXT NOT NULL REFERENCES users(id),
    account_id          TEXT NOT NULL REFERENCES accounts(id),
    type                TEXT NOT NULL CHECK (type IN ('INCOME', 'EXPENSE')),
    amount              REAL NOT NULL CHECK (amount > 0),
    description         TEXT NOT NULL DEFAULT '',
    date                TEXT NOT NULL,
    category            TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'COMPLETED',
    is_recurring        INTEGER NOT NULL DEFAULT 0,
    recurring_interval  TEXT NOT NULL DEFAULT '',
    last_processed      TEXT,
    next_recurring_date TEXT,
    created_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_recurring ON transactions(is_recurring, next_recurring_date);

CREATE TABLE IF NOT EXISTS budgets (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL UNIQUE REFERENCES users(id),
    amount          REAL NOT NULL CHECK (amount > 0),
    last_alert_sent TEXT
);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}
