package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobly/catalog-service/internal/sqlbuild"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Company is the JSON shape returned for a company row.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company with the jobs that reference it.
type CompanyDetail struct {
	Company
	Jobs []JobSummary `json:"jobs"`
}

// NewCompany is the body of a create request.
type NewCompany struct {
	Handle       string  `json:"handle" validate:"required,max=25"`
	Name         string  `json:"name" validate:"required,max=100"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees" validate:"omitempty,min=0,max=2147483647"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
}

// CompanyUpdate is a partial update. The handle is immutable and not part of
// it; nil fields are left unchanged.
type CompanyUpdate struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string `json:"description"`
	NumEmployees *int    `json:"numEmployees" validate:"omitempty,min=0,max=2147483647"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
}

// companyColumns maps update field names to storage columns.
var companyColumns = map[string]string{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

// Fields returns the present fields in declaration order.
func (u CompanyUpdate) Fields() []sqlbuild.Field {
	var fields []sqlbuild.Field
	if u.Name != nil {
		fields = append(fields, sqlbuild.Field{Name: "name", Value: *u.Name})
	}
	if u.Description != nil {
		fields = append(fields, sqlbuild.Field{Name: "description", Value: *u.Description})
	}
	if u.NumEmployees != nil {
		fields = append(fields, sqlbuild.Field{Name: "numEmployees", Value: *u.NumEmployees})
	}
	if u.LogoURL != nil {
		fields = append(fields, sqlbuild.Field{Name: "logoUrl", Value: *u.LogoURL})
	}
	return fields
}

// ─── Store ───────────────────────────────────────────────────────────────────

const companySelect = `handle, name, description, num_employees, logo_url`

// CompanyStore reads and writes the companies table.
type CompanyStore struct {
	db  DBTX
	pub Publisher
}

// NewCompanyStore returns a store backed by db. pub may be nil.
func NewCompanyStore(db DBTX, pub Publisher) *CompanyStore {
	return &CompanyStore{db: db, pub: pub}
}

func scanCompany(row pgx.Row, c *Company) error {
	return row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL)
}

// Create inserts a company. Returns a ConflictError if the handle is taken.
func (s *CompanyStore) Create(ctx context.Context, in NewCompany) (*Company, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var existing string
	err := s.db.QueryRow(ctx, `SELECT handle FROM companies WHERE handle = $1`, in.Handle).Scan(&existing)
	switch {
	case err == nil:
		return nil, &ConflictError{Msg: fmt.Sprintf("Duplicate company: %s", in.Handle)}
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("createCompany duplicate check: %w", err)
	}

	var c Company
	err = scanCompany(s.db.QueryRow(ctx,
		`INSERT INTO companies (handle, name, description, num_employees, logo_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+companySelect,
		in.Handle, in.Name, in.Description, in.NumEmployees, in.LogoURL,
	), &c)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, &ConflictError{Msg: fmt.Sprintf("Duplicate company: %s", in.Handle)}
		}
		return nil, fmt.Errorf("createCompany insert: %w", err)
	}

	publish(ctx, s.pub, ChannelCompanyCreated, c)
	return &c, nil
}

// FindAll returns every company ordered by name.
func (s *CompanyStore) FindAll(ctx context.Context) ([]Company, error) {
	return s.list(ctx, `SELECT `+companySelect+` FROM companies ORDER BY name`)
}

// Filter returns the companies matching every supplied predicate.
func (s *CompanyStore) Filter(ctx context.Context, f CompanyFilter) ([]Company, error) {
	where, err := f.where()
	if err != nil {
		return nil, err
	}
	clause, err := where.SQL()
	if err != nil {
		return nil, &ValidationError{Msg: "at least one filter is required"}
	}

	companies, err := s.list(ctx, `SELECT `+companySelect+` FROM companies `+clause+` ORDER BY name`, where.Args()...)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, notFound("No company results found")
	}
	return companies, nil
}

func (s *CompanyStore) list(ctx context.Context, query string, args ...any) ([]Company, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listCompanies query: %w", err)
	}
	defer rows.Close()

	companies := make([]Company, 0)
	for rows.Next() {
		var c Company
		if err := scanCompany(rows, &c); err != nil {
			return nil, fmt.Errorf("listCompanies scan: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listCompanies rows: %w", err)
	}
	return companies, nil
}

// Get returns a company and its jobs.
func (s *CompanyStore) Get(ctx context.Context, handle string) (*CompanyDetail, error) {
	c, err := companyByHandle(ctx, s.db, handle)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, title, salary, equity::text
		 FROM jobs
		 WHERE company_handle = $1
		 ORDER BY id`,
		handle,
	)
	if err != nil {
		return nil, fmt.Errorf("getCompany jobs query: %w", err)
	}
	defer rows.Close()

	detail := &CompanyDetail{Company: *c, Jobs: make([]JobSummary, 0)}
	for rows.Next() {
		var j JobSummary
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity); err != nil {
			return nil, fmt.Errorf("getCompany jobs scan: %w", err)
		}
		detail.Jobs = append(detail.Jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getCompany jobs rows: %w", err)
	}
	return detail, nil
}

func companyByHandle(ctx context.Context, db DBTX, handle string) (*Company, error) {
	var c Company
	err := scanCompany(db.QueryRow(ctx,
		`SELECT `+companySelect+` FROM companies WHERE handle = $1`, handle), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("No company: %s", handle))
	}
	if err != nil {
		return nil, fmt.Errorf("getCompany: %w", err)
	}
	return &c, nil
}

// Update applies a partial update to the company with the given handle.
func (s *CompanyStore) Update(ctx context.Context, handle string, in CompanyUpdate) (*Company, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	upd, err := sqlbuild.PartialUpdate(in.Fields(), companyColumns)
	if errors.Is(err, sqlbuild.ErrNoData) {
		return nil, &ValidationError{Msg: "No data"}
	}

	var c Company
	err = scanCompany(s.db.QueryRow(ctx,
		`UPDATE companies SET `+upd.SetClause+`
		 WHERE handle = `+upd.NextPlaceholder()+`
		 RETURNING `+companySelect,
		upd.Args(handle)...,
	), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("No company: %s", handle))
	}
	if err != nil {
		return nil, fmt.Errorf("updateCompany: %w", err)
	}

	publish(ctx, s.pub, ChannelCompanyUpdated, c)
	return &c, nil
}

// Remove deletes the company with the given handle.
func (s *CompanyStore) Remove(ctx context.Context, handle string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM companies WHERE handle = $1`, handle)
	if err != nil {
		return fmt.Errorf("removeCompany: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(fmt.Sprintf("No company: %s", handle))
	}

	publish(ctx, s.pub, ChannelCompanyDeleted, map[string]string{"handle": handle})
	return nil
}
