package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"jobly/catalog-service/internal/sqlbuild"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Job is the JSON shape returned for a job row. Company is only set by Get.
type Job struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *string  `json:"equity"`
	CompanyHandle string   `json:"company_handle"`
	Company       *Company `json:"company,omitempty"`
}

// JobSummary is the short form listed under a company.
type JobSummary struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Salary *int    `json:"salary"`
	Equity *string `json:"equity"`
}

// NewJob is the body of a create request.
type NewJob struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Salary        *int    `json:"salary" validate:"omitempty,min=0,max=2147483647"`
	Equity        *string `json:"equity" validate:"omitempty,equity"`
	CompanyHandle string  `json:"company_handle" validate:"required,max=25"`
}

// JobUpdate is a partial update. The id and owning company cannot change.
type JobUpdate struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=200"`
	Salary *int    `json:"salary" validate:"omitempty,min=0,max=2147483647"`
	Equity *string `json:"equity" validate:"omitempty,equity"`
}

// Fields returns the present fields in declaration order. Equity is
// converted to a numeric parameter.
func (u JobUpdate) Fields() ([]sqlbuild.Field, error) {
	var fields []sqlbuild.Field
	if u.Title != nil {
		fields = append(fields, sqlbuild.Field{Name: "title", Value: *u.Title})
	}
	if u.Salary != nil {
		fields = append(fields, sqlbuild.Field{Name: "salary", Value: *u.Salary})
	}
	if u.Equity != nil {
		n, err := numeric(u.Equity)
		if err != nil {
			return nil, err
		}
		fields = append(fields, sqlbuild.Field{Name: "equity", Value: n})
	}
	return fields, nil
}

// numeric converts a decimal string to a parameter for a NUMERIC column.
func numeric(s *string) (any, error) {
	if s == nil {
		return nil, nil
	}
	var n pgtype.Numeric
	if err := n.Scan(*s); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("equity %q is not a decimal", *s)}
	}
	return n, nil
}

// ─── Store ───────────────────────────────────────────────────────────────────

const jobSelect = `id, title, salary, equity::text, company_handle`

// JobStore reads and writes the jobs table.
type JobStore struct {
	db  DBTX
	pub Publisher
}

// NewJobStore returns a store backed by db. pub may be nil.
func NewJobStore(db DBTX, pub Publisher) *JobStore {
	return &JobStore{db: db, pub: pub}
}

func scanJob(row pgx.Row, j *Job) error {
	return row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle)
}

// Create inserts a job for an existing company.
func (s *JobStore) Create(ctx context.Context, in NewJob) (*Job, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	equity, err := numeric(in.Equity)
	if err != nil {
		return nil, err
	}

	var j Job
	err = scanJob(s.db.QueryRow(ctx,
		`INSERT INTO jobs (title, salary, equity, company_handle)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+jobSelect,
		in.Title, in.Salary, equity, in.CompanyHandle,
	), &j)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, &ValidationError{Msg: fmt.Sprintf("No company: %s", in.CompanyHandle)}
		}
		return nil, fmt.Errorf("createJob: %w", err)
	}

	publish(ctx, s.pub, ChannelJobCreated, j)
	return &j, nil
}

// FindAll returns every job ordered by title.
func (s *JobStore) FindAll(ctx context.Context) ([]Job, error) {
	return s.list(ctx, `SELECT `+jobSelect+` FROM jobs ORDER BY title, id`)
}

// Filter returns the jobs matching every supplied predicate.
func (s *JobStore) Filter(ctx context.Context, f JobFilter) ([]Job, error) {
	where := f.where()
	clause, err := where.SQL()
	if err != nil {
		return nil, &ValidationError{Msg: "at least one filter is required"}
	}

	jobs, err := s.list(ctx, `SELECT `+jobSelect+` FROM jobs `+clause+` ORDER BY title, id`, where.Args()...)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, notFound("No job results found")
	}
	return jobs, nil
}

func (s *JobStore) list(ctx context.Context, query string, args ...any) ([]Job, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		var j Job
		if err := scanJob(rows, &j); err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listJobs rows: %w", err)
	}
	return jobs, nil
}

// Get returns a job with its company attached. The company is fetched by a
// second query, not a join.
func (s *JobStore) Get(ctx context.Context, id int) (*Job, error) {
	var j Job
	err := scanJob(s.db.QueryRow(ctx, `SELECT `+jobSelect+` FROM jobs WHERE id = $1`, id), &j)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("No job: %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("getJob: %w", err)
	}

	c, err := companyByHandle(ctx, s.db, j.CompanyHandle)
	switch {
	case errors.Is(err, ErrNotFound):
		// The foreign key makes this unreachable unless a delete raced us.
		slog.Warn("job references missing company", "jobId", id, "companyHandle", j.CompanyHandle)
	case err != nil:
		return nil, err
	default:
		j.Company = c
	}
	return &j, nil
}

// Update applies a partial update to the job with the given id.
func (s *JobStore) Update(ctx context.Context, id int, in JobUpdate) (*Job, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}
	upd, err := sqlbuild.PartialUpdate(fields, nil)
	if errors.Is(err, sqlbuild.ErrNoData) {
		return nil, &ValidationError{Msg: "No data"}
	}

	var j Job
	err = scanJob(s.db.QueryRow(ctx,
		`UPDATE jobs SET `+upd.SetClause+`
		 WHERE id = `+upd.NextPlaceholder()+`
		 RETURNING `+jobSelect,
		upd.Args(id)...,
	), &j)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("No job: %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("updateJob: %w", err)
	}

	publish(ctx, s.pub, ChannelJobUpdated, j)
	return &j, nil
}

// Remove deletes the job with the given id.
func (s *JobStore) Remove(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("removeJob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(fmt.Sprintf("No job: %d", id))
	}

	publish(ctx, s.pub, ChannelJobDeleted, map[string]int{"id": id})
	return nil
}
