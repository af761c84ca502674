package db

const schema = `
CREATE TABLE IF NOT EXISTS alert_preferences (
    id                        UUID PRIMARY KEY,
    email                     TEXT NOT NULL,
    spot_slug                 TEXT NOT NULL,
    min_wave_height           DOUBLE PRECISION NOT NULL,
    max_wave_height           DOUBLE PRECISION NOT NULL,
    max_wind_speed            DOUBLE PRECISION NOT NULL,
    preferred_wind_directions TEXT[] NOT NULL,
    min_score                 DOUBLE PRECISION NOT NULL,
    active                    BOOLEAN NOT NULL DEFAULT TRUE,
    created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_notified_at          TIMESTAMPTZ,
    CHECK (min_wave_height <= max_wave_height),
    CHECK (cardinality(preferred_wind_directions) > 0)
);

CREATE INDEX IF NOT EXISTS idx_alert_preferences_email ON alert_preferences (email);
CREATE INDEX IF NOT EXISTS idx_alert_preferences_active ON alert_preferences (active) WHERE active;

CREATE TABLE IF NOT EXISTS alert_throttle (
    email            TEXT NOT NULL,
    spot_slug        TEXT NOT NULL,
    last_notified_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (email, spot_slug)
);

CREATE TABLE IF NOT EXISTS notifications (
    id            UUID PRIMARY KEY,
    created_at    TIMESTAMPTZ NOT NULL,
    sent_at       TIMESTAMPTZ,
    preference_id UUID NOT NULL,
    email         TEXT NOT NULL,
    spot_slug     TEXT NOT NULL,
    score         INTEGER NOT NULL,
    subject       TEXT NOT NULL,
    body          TEXT NOT NULL,
    status        TEXT NOT NULL,
    last_error    TEXT NOT NULL DEFAULT '',
    context       JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_email ON notifications (email, created_at DESC);
`
