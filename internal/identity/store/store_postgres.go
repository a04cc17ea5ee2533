package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventlift/internal/identity"
	"eventlift/pkg/domain"
	"eventlift/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code raised when the identities
// email constraint blocks an insert.
const uniqueViolation = "23505"

// PostgresStore persists identities in PostgreSQL. The unique index on
// lower(email) is the arbiter for concurrent promotion races.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema returns the DDL this store expects. Kept next to the queries so
// integration tests and deploy migrations share one source.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS identities (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	email_verified BOOLEAN NOT NULL,
	approval_status TEXT NOT NULL,
	club_name TEXT NOT NULL DEFAULT '',
	organization_name TEXT NOT NULL DEFAULT '',
	former_institution TEXT NOT NULL DEFAULT '',
	document BYTEA,
	document_content_type TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	logo_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS identities_email_key ON identities (lower(email));
`
}

const identityColumns = `id, email, name, password_hash, role, email_verified, approval_status,
	club_name, organization_name, former_institution,
	document, document_content_type, phone, logo_url, description, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, ident *identity.Identity) error {
	var docData []byte
	var docType string
	if ident.Document != nil {
		docData = ident.Document.Data
		docType = ident.Document.ContentType
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		uuid.UUID(ident.ID), ident.Email, ident.Name, ident.PasswordHash,
		string(ident.Role), ident.EmailVerified, string(ident.ApprovalStatus),
		ident.Attributes.ClubName, ident.Attributes.OrganizationName, ident.Attributes.FormerInstitution,
		docData, docType, ident.Phone, ident.LogoURL, ident.Description,
		ident.CreatedAt, ident.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*identity.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, uuid.UUID(id))
	return scanIdentity(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE lower(email) = lower($1)`, email)
	return scanIdentity(row)
}

func (s *PostgresStore) Update(ctx context.Context, ident *identity.Identity) error {
	var docData []byte
	var docType string
	if ident.Document != nil {
		docData = ident.Document.Data
		docType = ident.Document.ContentType
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE identities SET
			email = $2, name = $3, password_hash = $4, role = $5,
			email_verified = $6, approval_status = $7,
			club_name = $8, organization_name = $9, former_institution = $10,
			document = $11, document_content_type = $12,
			phone = $13, logo_url = $14, description = $15, updated_at = $16
		WHERE id = $1`,
		uuid.UUID(ident.ID), ident.Email, ident.Name, ident.PasswordHash, string(ident.Role),
		ident.EmailVerified, string(ident.ApprovalStatus),
		ident.Attributes.ClubName, ident.Attributes.OrganizationName, ident.Attributes.FormerInstitution,
		docData, docType, ident.Phone, ident.LogoURL, ident.Description, ident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*identity.Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+identityColumns+` FROM identities ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()
	return scanIdentities(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*identity.Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE approval_status = $1 ORDER BY created_at, email`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("list identities by status: %w", err)
	}
	defer rows.Close()
	return scanIdentities(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*identity.Identity, error) {
	var (
		ident   identity.Identity
		id      uuid.UUID
		role    string
		status  string
		docData []byte
		docType string
	)
	err := row.Scan(&id, &ident.Email, &ident.Name, &ident.PasswordHash, &role,
		&ident.EmailVerified, &status,
		&ident.Attributes.ClubName, &ident.Attributes.OrganizationName, &ident.Attributes.FormerInstitution,
		&docData, &docType, &ident.Phone, &ident.LogoURL, &ident.Description,
		&ident.CreatedAt, &ident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	ident.ID = domain.UserID(id)
	ident.Role = domain.Role(role)
	ident.ApprovalStatus = domain.ApprovalStatus(status)
	if len(docData) > 0 {
		ident.Document = &identity.Document{Data: docData, ContentType: docType}
	}
	return &ident, nil
}

func scanIdentities(rows *sql.Rows) ([]*identity.Identity, error) {
	var out []*identity.Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}
