// internal/app/store/relational/organizations.go
package relstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Organization owns equipment and emissions records.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateOrganization inserts an organization. An empty id is generated.
func (db *DB) CreateOrganization(ctx context.Context, org Organization) (Organization, error) {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO organizations (id, name, slug) VALUES (?, ?, ?)`),
		org.ID, org.Name, org.Slug)
	if err != nil {
		return Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return org, nil
}

// ListOrganizations returns every organization ordered by name.
func (db *DB) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, slug FROM organizations ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
