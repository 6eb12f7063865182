// Command seed provisions the database schema and the reference data the
// API expects: roles, departments, positions, default category mappings
// and an initial administrator account.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/pkg/config"
	"github.com/civitas-app/civitas-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS roles (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS departments (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS department_roles (
    id UUID PRIMARY KEY,
    department_id UUID NOT NULL REFERENCES departments(id),
    role_id UUID NOT NULL REFERENCES roles(id),
    UNIQUE (department_id, role_id)
);

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    telegram_chat_id BIGINT,
    last_login TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_positions (
    user_id UUID NOT NULL REFERENCES users(id),
    position_id UUID NOT NULL REFERENCES department_roles(id),
    PRIMARY KEY (user_id, position_id)
);

CREATE TABLE IF NOT EXISTS companies (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    phone TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reports (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    category TEXT NOT NULL,
    status TEXT NOT NULL,
    reporter_id UUID NOT NULL REFERENCES users(id),
    assignee_id UUID REFERENCES users(id),
    company_id UUID REFERENCES companies(id),
    responsible_role TEXT,
    rejection_reason TEXT,
    photos TEXT[] NOT NULL DEFAULT '{}',
    latitude DOUBLE PRECISION,
    longitude DOUBLE PRECISION,
    address TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
CREATE INDEX IF NOT EXISTS idx_reports_category ON reports(category);
CREATE INDEX IF NOT EXISTS idx_reports_reporter ON reports(reporter_id);

CREATE TABLE IF NOT EXISTS category_role_mappings (
    id UUID PRIMARY KEY,
    category TEXT NOT NULL UNIQUE,
    role_id UUID NOT NULL REFERENCES roles(id),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    report_id UUID REFERENCES reports(id),
    content TEXT NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    token TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked BOOLEAN NOT NULL DEFAULT FALSE,
    revoked_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id UUID PRIMARY KEY,
    user_id UUID,
    action TEXT NOT NULL,
    resource TEXT NOT NULL,
    resource_id TEXT,
    new_values JSONB,
    ip_address TEXT,
    user_agent TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func main() {
	var (
		adminEmail    string
		adminPassword string
		schemaOnly    bool
	)
	flag.StringVar(&adminEmail, "admin-email", "admin@civitas.local", "Initial administrator email")
	flag.StringVar(&adminPassword, "admin-password", "", "Initial administrator password (required unless -schema-only)")
	flag.BoolVar(&schemaOnly, "schema-only", false, "Apply schema without seeding data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}
	log.Println("schema applied")

	if schemaOnly {
		return
	}
	if adminPassword == "" {
		log.Fatal("-admin-password is required when seeding data")
	}

	if err := seed(ctx, db, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}
	log.Println("reference data seeded")
}

func seed(ctx context.Context, db *sqlx.DB, adminEmail, adminPassword string) error {
	roleIDs := make(map[models.RoleName]string)
	for _, role := range models.AllRoles() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), string(role)); err != nil {
			return err
		}
		var id string
		if err := db.GetContext(ctx, &id, `SELECT id FROM roles WHERE name = $1`, string(role)); err != nil {
			return err
		}
		roleIDs[role] = id
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO departments (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		uuid.NewString(), models.DepartmentOrganization); err != nil {
		return err
	}
	var orgID string
	if err := db.GetContext(ctx, &orgID, `SELECT id FROM departments WHERE name = $1`, models.DepartmentOrganization); err != nil {
		return err
	}

	// Structural roles live only in the Organization department.
	for _, role := range []models.RoleName{models.RoleCitizen, models.RoleAdministrator, models.RolePublicRelations} {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO department_roles (id, department_id, role_id) VALUES ($1, $2, $3)
ON CONFLICT (department_id, role_id) DO NOTHING`,
			uuid.NewString(), orgID, roleIDs[role]); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	adminID := uuid.NewString()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, active)
VALUES ($1, $2, $3, $4, TRUE) ON CONFLICT (email) DO NOTHING`,
		adminID, adminEmail, "Administrator", string(hash)); err != nil {
		return err
	}
	if err := db.GetContext(ctx, &adminID, `SELECT id FROM users WHERE email = $1`, adminEmail); err != nil {
		return err
	}

	var adminPositionID string
	if err := db.GetContext(ctx, &adminPositionID,
		`SELECT id FROM department_roles WHERE department_id = $1 AND role_id = $2`,
		orgID, roleIDs[models.RoleAdministrator]); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO user_positions (user_id, position_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		adminID, adminPositionID); err != nil {
		return err
	}

	return nil
}
