package catalog_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"jobly/catalog-service/internal/catalog"
)

var companyCols = []string{"handle", "name", "description", "num_employees", "logo_url"}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

// recorder is a catalog.Publisher that keeps every event.
type recorder struct {
	mu       sync.Mutex
	channels []string
	fail     bool
}

func (r *recorder) Publish(_ context.Context, channel string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, channel)
	if r.fail {
		return errors.New("redis down")
	}
	return nil
}

func c1Row() *pgxmock.Rows {
	return pgxmock.NewRows(companyCols).
		AddRow("c1", "C1", "Desc1", intPtr(1), strPtr("http://c1.img"))
}

// ── Create ─────────────────────────────────────────────────────────────────

func TestCompanyCreate_Works(t *testing.T) {
	mock := newMock(t)
	pub := &recorder{}
	store := catalog.NewCompanyStore(mock, pub)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
		WithArgs("new").
		WillReturnRows(pgxmock.NewRows([]string{"handle"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO companies`)).
		WithArgs("new", "New", "New Description", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(companyCols).
			AddRow("new", "New", "New Description", intPtr(1), strPtr("http://new.img")))

	got, err := store.Create(context.Background(), catalog.NewCompany{
		Handle:       "new",
		Name:         "New",
		Description:  "New Description",
		NumEmployees: intPtr(1),
		LogoURL:      strPtr("http://new.img"),
	})
	if err != nil {
		t.Fatalf("Create returned unexpected error: %v", err)
	}
	if got.Handle != "new" || *got.NumEmployees != 1 || *got.LogoURL != "http://new.img" {
		t.Errorf("Create = %+v", got)
	}
	if len(pub.channels) != 1 || pub.channels[0] != catalog.ChannelCompanyCreated {
		t.Errorf("published %v, want [%s]", pub.channels, catalog.ChannelCompanyCreated)
	}
}

func TestCompanyCreate_Duplicate(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{"handle"}).AddRow("c1"))

	_, err := store.Create(context.Background(), catalog.NewCompany{Handle: "c1", Name: "C1"})
	var ce *catalog.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("Create duplicate error = %v, want ConflictError", err)
	}
	if ce.Msg != "Duplicate company: c1" {
		t.Errorf("message = %q", ce.Msg)
	}
}

func TestCompanyCreate_UniqueViolationOnInsert(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies`)).
		WithArgs("c9").
		WillReturnRows(pgxmock.NewRows([]string{"handle"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO companies`)).
		WithArgs("c9", "C9", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.Create(context.Background(), catalog.NewCompany{Handle: "c9", Name: "C9"})
	var ce *catalog.ConflictError
	if !errors.As(err, &ce) {
		t.Errorf("error = %v, want ConflictError", err)
	}
}

func TestCompanyCreate_InvalidInputSkipsDatabase(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	_, err := store.Create(context.Background(), catalog.NewCompany{
		Name:         "No handle",
		NumEmployees: intPtr(-1),
	})
	var ve *catalog.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(ve.Problems) != 2 {
		t.Errorf("problems = %v, want handle and numEmployees", ve.Problems)
	}
}

func TestCompanyWrites_NumEmployeesBeyondInt32(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)
	huge := intPtr(99999999999)

	_, err := store.Create(context.Background(), catalog.NewCompany{Handle: "big", Name: "Big", NumEmployees: huge})
	var ve *catalog.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("Create error = %v, want ValidationError", err)
	}

	_, err = store.Update(context.Background(), "big", catalog.CompanyUpdate{NumEmployees: huge})
	if !errors.As(err, &ve) {
		t.Errorf("Update error = %v, want ValidationError", err)
	}
}

// ── Read ───────────────────────────────────────────────────────────────────

func TestCompanyFindAll_OrderedByName(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies ORDER BY name`)).
		WillReturnRows(pgxmock.NewRows(companyCols).
			AddRow("c1", "C1", "Desc1", intPtr(1), strPtr("http://c1.img")).
			AddRow("c2", "C2", "Desc2", intPtr(2), (*string)(nil)))

	got, err := store.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll returned unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Handle != "c1" || got[1].Handle != "c2" {
		t.Errorf("FindAll = %+v", got)
	}
	if got[1].LogoURL != nil {
		t.Errorf("c2 logoUrl = %v, want nil", *got[1].LogoURL)
	}
}

func TestCompanyGet_AttachesJobs(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnRows(c1Row())
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE company_handle = $1`)).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "salary", "equity"}).
			AddRow(1, "Software Engineer", intPtr(5000), strPtr("0.1")))

	got, err := store.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Get returned unexpected error: %v", err)
	}
	if got.Handle != "c1" || got.Name != "C1" {
		t.Errorf("company = %+v", got.Company)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].Title != "Software Engineer" || *got.Jobs[0].Equity != "0.1" {
		t.Errorf("jobs = %+v", got.Jobs)
	}
}

func TestCompanyGet_NotFound(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows(companyCols))

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrNotFound", err)
	}
}

// ── Update ─────────────────────────────────────────────────────────────────

func TestCompanyUpdate_AliasesColumnsAndAppendsHandle(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE companies SET "name"=$1, "num_employees"=$2, "logo_url"=$3`) +
		`\s+` + regexp.QuoteMeta(`WHERE handle = $4`)).
		WithArgs("New", 10, "http://new.img", "c1").
		WillReturnRows(pgxmock.NewRows(companyCols).
			AddRow("c1", "New", "Desc1", intPtr(10), strPtr("http://new.img")))

	got, err := store.Update(context.Background(), "c1", catalog.CompanyUpdate{
		Name:         strPtr("New"),
		NumEmployees: intPtr(10),
		LogoURL:      strPtr("http://new.img"),
	})
	if err != nil {
		t.Fatalf("Update returned unexpected error: %v", err)
	}
	if got.Name != "New" || *got.NumEmployees != 10 {
		t.Errorf("Update = %+v", got)
	}
}

func TestCompanyUpdate_NoData(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	_, err := store.Update(context.Background(), "c1", catalog.CompanyUpdate{})
	var ve *catalog.ValidationError
	if !errors.As(err, &ve) || ve.Msg != "No data" {
		t.Errorf("Update({}) error = %v, want ValidationError(No data)", err)
	}
}

func TestCompanyUpdate_NotFound(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE companies`)).
		WithArgs("New", "nope").
		WillReturnRows(pgxmock.NewRows(companyCols))

	_, err := store.Update(context.Background(), "nope", catalog.CompanyUpdate{Name: strPtr("New")})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// ── Remove ─────────────────────────────────────────────────────────────────

func TestCompanyRemove(t *testing.T) {
	mock := newMock(t)
	pub := &recorder{fail: true}
	store := catalog.NewCompanyStore(mock, pub)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	// A failing publisher must not fail the delete.
	if err := store.Remove(context.Background(), "c1"); err != nil {
		t.Fatalf("Remove returned unexpected error: %v", err)
	}
	if len(pub.channels) != 1 || pub.channels[0] != catalog.ChannelCompanyDeleted {
		t.Errorf("published %v", pub.channels)
	}
}

func TestCompanyRemove_NotFound(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM companies`)).
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.Remove(context.Background(), "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Remove(nope) error = %v, want ErrNotFound", err)
	}
}

// ── Filter ─────────────────────────────────────────────────────────────────

func TestCompanyFilter_BuildsConjunction(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM companies WHERE name ILIKE '%' || $1 || '%' AND num_employees >= $2 AND num_employees <= $3 ORDER BY name`)).
		WithArgs("c", 1, 2).
		WillReturnRows(c1Row())

	got, err := store.Filter(context.Background(), catalog.CompanyFilter{
		Name:         strPtr("c"),
		MinEmployees: intPtr(1),
		MaxEmployees: intPtr(2),
	})
	if err != nil {
		t.Fatalf("Filter returned unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Handle != "c1" {
		t.Errorf("Filter = %+v", got)
	}
}

func TestCompanyFilter_SinglePredicateUsesFirstPlaceholder(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE num_employees <= $1 ORDER BY name`)).
		WithArgs(5).
		WillReturnRows(c1Row())

	if _, err := store.Filter(context.Background(), catalog.CompanyFilter{MaxEmployees: intPtr(5)}); err != nil {
		t.Errorf("Filter returned unexpected error: %v", err)
	}
}

func TestCompanyFilter_MinAboveMaxAlwaysFails(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	filters := []catalog.CompanyFilter{
		{MinEmployees: intPtr(3), MaxEmployees: intPtr(2)},
		{Name: strPtr("c"), MinEmployees: intPtr(100), MaxEmployees: intPtr(0)},
	}
	for _, f := range filters {
		_, err := store.Filter(context.Background(), f)
		var ve *catalog.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Filter(%+v) error = %v, want ValidationError", f, err)
		}
	}
}

func TestCompanyFilter_NoPredicatesRejected(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	_, err := store.Filter(context.Background(), catalog.CompanyFilter{Name: strPtr("")})
	var ve *catalog.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("Filter(empty) error = %v, want ValidationError", err)
	}
}

func TestCompanyFilter_EmptyResultIsNotFound(t *testing.T) {
	mock := newMock(t)
	store := catalog.NewCompanyStore(mock, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE name ILIKE`)).
		WithArgs("zzz").
		WillReturnRows(pgxmock.NewRows(companyCols))

	_, err := store.Filter(context.Background(), catalog.CompanyFilter{Name: strPtr("zzz")})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
