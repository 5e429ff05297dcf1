package catalog

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"

	"jobly/catalog-service/internal/sqlbuild"
)

// CompanyFilter holds the optional company search predicates. Nil fields
// impose no constraint.
type CompanyFilter struct {
	Name         *string
	MinEmployees *int
	MaxEmployees *int
}

// JobFilter holds the optional job search predicates. HasEquity false is the
// same as absent.
type JobFilter struct {
	Title     *string
	MinSalary *int
	HasEquity bool
}

// ParseCompanyFilter coerces query parameters into a CompanyFilter. Unknown
// keys and non-numeric bounds are reported together.
func ParseCompanyFilter(raw url.Values) (CompanyFilter, error) {
	p := newParamParser(raw, "name", "minEmployees", "maxEmployees")
	f := CompanyFilter{
		Name:         p.text("name"),
		MinEmployees: p.count("minEmployees"),
		MaxEmployees: p.count("maxEmployees"),
	}
	if err := p.err(); err != nil {
		return CompanyFilter{}, err
	}
	if err := f.Validate(); err != nil {
		return CompanyFilter{}, err
	}
	return f, nil
}

// Validate checks the cross-field bound.
func (f CompanyFilter) Validate() error {
	if f.MinEmployees != nil && f.MaxEmployees != nil && *f.MinEmployees > *f.MaxEmployees {
		return &ValidationError{Msg: "minEmployees cannot be greater than maxEmployees"}
	}
	return nil
}

func (f CompanyFilter) where() (*sqlbuild.Where, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	w := &sqlbuild.Where{}
	if f.Name != nil && *f.Name != "" {
		w.Add("name ILIKE '%%' || %s || '%%'", *f.Name)
	}
	if f.MinEmployees != nil {
		w.Add("num_employees >= %s", *f.MinEmployees)
	}
	if f.MaxEmployees != nil {
		w.Add("num_employees <= %s", *f.MaxEmployees)
	}
	return w, nil
}

// ParseJobFilter coerces query parameters into a JobFilter.
func ParseJobFilter(raw url.Values) (JobFilter, error) {
	p := newParamParser(raw, "title", "minSalary", "hasEquity")
	f := JobFilter{
		Title:     p.text("title"),
		MinSalary: p.count("minSalary"),
	}
	if b := p.boolean("hasEquity"); b != nil {
		f.HasEquity = *b
	}
	if err := p.err(); err != nil {
		return JobFilter{}, err
	}
	return f, nil
}

func (f JobFilter) where() *sqlbuild.Where {
	w := &sqlbuild.Where{}
	if f.Title != nil && *f.Title != "" {
		w.Add("title ILIKE '%%' || %s || '%%'", *f.Title)
	}
	if f.MinSalary != nil {
		w.Add("salary >= %s", *f.MinSalary)
	}
	if f.HasEquity {
		w.Add("equity > %s", 0)
	}
	return w
}

// ─── Query parameter coercion ────────────────────────────────────────────────

type paramParser struct {
	raw      url.Values
	problems []string
}

func newParamParser(raw url.Values, allowed ...string) *paramParser {
	p := &paramParser{raw: raw}
	known := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		known[k] = true
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			p.problems = append(p.problems, fmt.Sprintf("%s is not an allowed filter", k))
		}
	}
	return p
}

// value returns the single non-empty value for key, or "" when absent.
func (p *paramParser) value(key string) string {
	vals := p.raw[key]
	if len(vals) > 1 {
		p.problems = append(p.problems, fmt.Sprintf("%s must be given once", key))
		return ""
	}
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (p *paramParser) text(key string) *string {
	v := p.value(key)
	if v == "" {
		return nil
	}
	return &v
}

func (p *paramParser) count(key string) *int {
	v := p.value(key)
	if v == "" {
		return nil
	}
	// Columns are INTEGER, so anything beyond int32 can never match.
	n64, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be an integer up to %d", key, math.MaxInt32))
		return nil
	}
	if n64 < 0 {
		p.problems = append(p.problems, fmt.Sprintf("%s must be >= 0", key))
		return nil
	}
	n := int(n64)
	return &n
}

func (p *paramParser) boolean(key string) *bool {
	v := p.value(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be a boolean", key))
		return nil
	}
	return &b
}

func (p *paramParser) err() error {
	if len(p.problems) == 0 {
		return nil
	}
	return &ValidationError{Msg: "invalid filter", Problems: p.problems}
}
