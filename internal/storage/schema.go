package storage

// schemaStatements create the recorder tables when missing.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS market_ticks (
        id          BIGSERIAL PRIMARY KEY,
        observed_at TIMESTAMPTZ NOT NULL,
        pair        TEXT        NOT NULL,
        base        TEXT        NOT NULL,
        quote       TEXT        NOT NULL,
        price_last  NUMERIC,
        best_bid    NUMERIC,
        best_ask    NUMERIC,
        change_pct  NUMERIC,
        change_dir  TEXT,
        vol_base    NUMERIC,
        vol_quote   NUMERIC,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (pair, observed_at)
    );`,
	`CREATE INDEX IF NOT EXISTS market_ticks_pair_observed_idx
        ON market_ticks (pair, observed_at DESC);`,
	`CREATE TABLE IF NOT EXISTS mover_alerts (
        id            BIGSERIAL PRIMARY KEY,
        pair          TEXT        NOT NULL,
        observed_at   TIMESTAMPTZ NOT NULL,
        change_pct    NUMERIC     NOT NULL,
        threshold_pct NUMERIC     NOT NULL,
        direction     TEXT        NOT NULL,
        channels      TEXT[]      NOT NULL DEFAULT '{}',
        created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
    );`,
}
