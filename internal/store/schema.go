package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS unit_summaries (
    unit_key         TEXT PRIMARY KEY,
    fingerprint      TEXT NOT NULL,
    events           INTEGER NOT NULL,
    primary_events   INTEGER NOT NULL,
    secondary_events INTEGER NOT NULL,
    preview          TEXT,
    parsed_at        TEXT NOT NULL
);
`
