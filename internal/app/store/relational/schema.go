// internal/app/store/relational/schema.go
package relstore

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS organizations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS equipment (
	id                    TEXT PRIMARY KEY,
	organization_id       TEXT NOT NULL REFERENCES organizations(id),
	name                  TEXT NOT NULL,
	equipment_id          TEXT NOT NULL DEFAULT '',
	manufacturer          TEXT NOT NULL,
	type                  TEXT NOT NULL,
	status                TEXT NOT NULL DEFAULT 'active',
	power_draw_value      REAL NOT NULL DEFAULT 0,
	daily_emissions_value REAL NOT NULL DEFAULT 0,
	daily_emissions_unit  TEXT NOT NULL DEFAULT 'kgCO₂e',
	category              TEXT NOT NULL DEFAULT '',
	image_url             TEXT NOT NULL DEFAULT '',
	is_active             INTEGER NOT NULL DEFAULT 1,
	created_by            TEXT NOT NULL DEFAULT '',
	created_at            TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_equipment_org_active ON equipment(organization_id, is_active);

CREATE TABLE IF NOT EXISTS daily_emissions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	equipment_id    TEXT NOT NULL REFERENCES equipment(id),
	date            TEXT NOT NULL,
	emissions_value REAL NOT NULL DEFAULT 0,
	emissions_unit  TEXT NOT NULL DEFAULT 'kgCO₂e',
	created_at      TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (organization_id, equipment_id, date)
);
CREATE INDEX IF NOT EXISTS idx_daily_emissions_org_date ON daily_emissions(organization_id, date);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS organizations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS equipment (
	id                    TEXT PRIMARY KEY,
	organization_id       TEXT NOT NULL REFERENCES organizations(id),
	name                  TEXT NOT NULL,
	equipment_id          TEXT NOT NULL DEFAULT '',
	manufacturer          TEXT NOT NULL,
	type                  TEXT NOT NULL,
	status                TEXT NOT NULL DEFAULT 'active',
	power_draw_value      DOUBLE PRECISION NOT NULL DEFAULT 0,
	daily_emissions_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	daily_emissions_unit  TEXT NOT NULL DEFAULT 'kgCO₂e',
	category              TEXT NOT NULL DEFAULT '',
	image_url             TEXT NOT NULL DEFAULT '',
	is_active             BOOLEAN NOT NULL DEFAULT TRUE,
	created_by            TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_equipment_org_active ON equipment(organization_id, is_active);

CREATE TABLE IF NOT EXISTS daily_emissions (
	id              BIGSERIAL PRIMARY KEY,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	equipment_id    TEXT NOT NULL REFERENCES equipment(id),
	date            TEXT NOT NULL,
	emissions_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	emissions_unit  TEXT NOT NULL DEFAULT 'kgCO₂e',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (organization_id, equipment_id, date)
);
CREATE INDEX IF NOT EXISTS idx_daily_emissions_org_date ON daily_emissions(organization_id, date);
`
