package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
	"github.com/atlekbai/casewatch/internal/store"
)

type CaseService struct {
	source store.Source
	cache  *schema.Cache
	desc   protoreflect.ServiceDescriptor
}

func NewCaseService(source store.Source, cache *schema.Cache) (*CaseService, error) {
	desc, err := CaseServiceDescriptor()
	if err != nil {
		return nil, err
	}
	return &CaseService{source: source, cache: cache, desc: desc}, nil
}

func (s *CaseService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	methods := s.desc.Methods()
	opts := connect.WithInterceptors(interceptors...)

	mux := http.NewServeMux()
	mux.Handle(CaseServiceFilterReportCasesProcedure, connect.NewUnaryHandler(
		CaseServiceFilterReportCasesProcedure, s.FilterReportCases,
		connect.WithSchema(methods.ByName("FilterReportCases")), opts,
	))
	mux.Handle(CaseServiceQueryProcedure, connect.NewUnaryHandler(
		CaseServiceQueryProcedure, s.Query,
		connect.WithSchema(methods.ByName("Query")), opts,
	))
	mux.Handle(CaseServiceCompileProcedure, connect.NewUnaryHandler(
		CaseServiceCompileProcedure, s.Compile,
		connect.WithSchema(methods.ByName("Compile")), opts,
	))
	mux.Handle(CaseServiceListFieldsProcedure, connect.NewUnaryHandler(
		CaseServiceListFieldsProcedure, s.ListFields,
		connect.WithSchema(methods.ByName("ListFields")), opts,
	))
	return "/" + CaseServiceName + "/", mux
}

// FilterReportCases lists report cases matching the request filter.
func (s *CaseService) FilterReportCases(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in query.ParamsInput
	if err := decodeRequest(req.Msg, &in); err != nil {
		return nil, connectError(err)
	}
	return s.list(ctx, schema.ReportCases, in)
}

type queryRequest struct {
	Object string `json:"object"`
	query.ParamsInput
}

// Query lists any catalog object.
func (s *CaseService) Query(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in queryRequest
	if err := decodeRequest(req.Msg, &in); err != nil {
		return nil, connectError(err)
	}
	if in.Object == "" {
		return nil, connectError(fmt.Errorf("%w: object is required", errBadRequest))
	}
	return s.list(ctx, in.Object, in.ParamsInput)
}

func (s *CaseService) list(ctx context.Context, objectName string, in query.ParamsInput) (*connect.Response[structpb.Struct], error) {
	obj, err := s.cache.Lookup(objectName)
	if err != nil {
		return nil, connectError(err)
	}

	params, err := query.ParseParams(obj, in)
	if err != nil {
		return nil, connectError(err)
	}

	page, err := s.source.List(ctx, obj, params)
	if err != nil {
		return nil, internalError("query failed", err)
	}

	resp, err := pageToStruct(page)
	if err != nil {
		return nil, internalError("marshal result", err)
	}
	return connect.NewResponse(resp), nil
}

// Compile returns the parameterized predicate for a filter.
func (s *CaseService) Compile(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in CompileInput
	if err := decodeRequest(req.Msg, &in); err != nil {
		return nil, connectError(err)
	}
	res, err := CompileFilter(s.cache, in)
	if err != nil {
		return nil, connectError(err)
	}

	out := map[string]any{
		"expression": res.Expression,
		"parameters": res.Parameters,
		"keys":       stringList(res.Keys),
		"depth":      res.Depth,
		"text":       res.Text,
	}
	if res.SQL != "" {
		out["sql"] = res.SQL
		out["args"] = res.Args
	}
	st, err := structpb.NewStruct(out)
	if err != nil {
		return nil, internalError("marshal result", err)
	}
	return connect.NewResponse(st), nil
}

// ListFields describes the catalog for filter editors.
func (s *CaseService) ListFields(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	st, err := structpb.NewStruct(catalogMetadata(s.cache))
	if err != nil {
		return nil, internalError("marshal catalog", err)
	}
	return connect.NewResponse(st), nil
}

// decodeRequest reads a Struct request body into dst. Unknown top-level
// fields are rejected.
func decodeRequest(msg *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if filter.IsClientError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pageToStruct(p *store.Page) (*structpb.Struct, error) {
	results := make([]*structpb.Value, len(p.Results))
	for i, r := range p.Results {
		st, err := rawJSONToStruct(r)
		if err != nil {
			return nil, err
		}
		results[i] = structpb.NewStructValue(st)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"total_count": structpb.NewNumberValue(float64(p.TotalCount)),
		"page":        structpb.NewNumberValue(float64(p.Page)),
		"page_size":   structpb.NewNumberValue(float64(p.PageSize)),
		"results":     structpb.NewListValue(&structpb.ListValue{Values: results}),
	}}, nil
}

func rawJSONToStruct(data json.RawMessage) (*structpb.Struct, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
