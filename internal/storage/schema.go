package storage

const schema = `
-- 'app_state' holds serialized state blobs, one row per key.
CREATE TABLE IF NOT EXISTS app_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

-- 'review_logs' is an append-only history of ratings.
CREATE TABLE IF NOT EXISTS review_logs (
    id TEXT PRIMARY KEY,
    card_id INTEGER NOT NULL,
    rating TEXT NOT NULL,
    review_date TEXT NOT NULL,
    interval_days REAL NOT NULL,
    ease REAL NOT NULL,
    next_review TEXT NOT NULL,
    recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_logs_card ON review_logs(card_id);
`
