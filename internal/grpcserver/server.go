// Package grpcserver implements the read-only Catalog gRPC service.
//
// It delegates all data access to the catalog stores and handles only the
// gRPC transport concerns: request decoding, error mapping, and conversion of
// the domain model to protobuf Struct messages. Messages are
// google.protobuf.Struct values, so no generated stubs are involved:
//
//	GetCompany({handle})                                -> {company}
//	ListCompanies({name?, minEmployees?, maxEmployees?}) -> {companies}
//	GetJob({id})                                        -> {job}
//	ListJobs({title?, minSalary?, hasEquity?})           -> {jobs}
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"jobly/catalog-service/internal/catalog"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobly.catalog.v1.Catalog"

// Companies is the read side of *catalog.CompanyStore.
type Companies interface {
	FindAll(ctx context.Context) ([]catalog.Company, error)
	Filter(ctx context.Context, f catalog.CompanyFilter) ([]catalog.Company, error)
	Get(ctx context.Context, handle string) (*catalog.CompanyDetail, error)
}

// Jobs is the read side of *catalog.JobStore.
type Jobs interface {
	FindAll(ctx context.Context) ([]catalog.Job, error)
	Filter(ctx context.Context, f catalog.JobFilter) ([]catalog.Job, error)
	Get(ctx context.Context, id int) (*catalog.Job, error)
}

// Server implements the Catalog service.
type Server struct {
	companies Companies
	jobs      Jobs
}

// NewServer constructs a Server backed by the given stores.
func NewServer(companies Companies, jobs Jobs) *Server {
	return &Server{companies: companies, jobs: jobs}
}

// Register mounts srv on s.
func Register(s *grpc.Server, srv *Server) {
	s.RegisterService(&serviceDesc, srv)
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// GetCompany returns one company with its jobs.
func (s *Server) GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	handle := req.GetFields()["handle"].GetStringValue()
	if handle == "" {
		return nil, status.Error(codes.InvalidArgument, "handle is required")
	}
	c, err := s.companies.Get(ctx, handle)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return envelope("company", c)
}

// ListCompanies returns all companies, or the filtered set when any filter
// field is present.
func (s *Server) ListCompanies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := filterValues(req)
	if err != nil {
		return nil, err
	}

	var companies []catalog.Company
	if len(raw) == 0 {
		companies, err = s.companies.FindAll(ctx)
	} else {
		var f catalog.CompanyFilter
		if f, err = catalog.ParseCompanyFilter(raw); err == nil {
			companies, err = s.companies.Filter(ctx, f)
		}
	}
	if err != nil {
		return nil, toGRPCError(err)
	}
	return envelope("companies", companies)
}

// GetJob returns one job with its company.
func (s *Server) GetJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	n := v.GetNumberValue()
	if n != math.Trunc(n) || n < 1 || n > math.MaxInt32 {
		return nil, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}
	j, err := s.jobs.Get(ctx, int(n))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return envelope("job", j)
}

// ListJobs returns all jobs, or the filtered set when any filter field is
// present.
func (s *Server) ListJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := filterValues(req)
	if err != nil {
		return nil, err
	}

	var jobs []catalog.Job
	if len(raw) == 0 {
		jobs, err = s.jobs.FindAll(ctx)
	} else {
		var f catalog.JobFilter
		if f, err = catalog.ParseJobFilter(raw); err == nil {
			jobs, err = s.jobs.Filter(ctx, f)
		}
	}
	if err != nil {
		return nil, toGRPCError(err)
	}
	return envelope("jobs", jobs)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// filterValues flattens scalar Struct fields into query-parameter form so
// the HTTP coercion rules apply unchanged.
func filterValues(req *structpb.Struct) (url.Values, error) {
	raw := url.Values{}
	for k, v := range req.GetFields() {
		switch x := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			raw.Set(k, x.StringValue)
		case *structpb.Value_NumberValue:
			raw.Set(k, strconv.FormatFloat(x.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			raw.Set(k, strconv.FormatBool(x.BoolValue))
		default:
			return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be a scalar", k))
		}
	}
	return raw, nil
}

// envelope wraps v under key, going through its JSON form so the gRPC and
// HTTP payloads share field names.
func envelope(key string, v any) (*structpb.Struct, error) {
	b, err := json.Marshal(map[string]any{key: v})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	var ce *catalog.ConflictError
	if errors.As(err, &ce) {
		return status.Error(codes.AlreadyExists, ce.Msg)
	}
	return status.Error(codes.Internal, "internal server error")
}
