package service

import (
	"fmt"
	"sync"

	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/structpb"
)

const (
	// CaseServiceName is the fully-qualified name of the case service.
	CaseServiceName = "casewatch.v1.CaseService"

	CaseServiceFilterReportCasesProcedure = "/casewatch.v1.CaseService/FilterReportCases"
	CaseServiceQueryProcedure             = "/casewatch.v1.CaseService/Query"
	CaseServiceCompileProcedure           = "/casewatch.v1.CaseService/Compile"
	CaseServiceListFieldsProcedure        = "/casewatch.v1.CaseService/ListFields"
)

const (
	structType = ".google.protobuf.Struct"
	emptyType  = ".google.protobuf.Empty"
)

// rpcDef is one method of the service with its REST binding.
type rpcDef struct {
	name   string
	input  string
	method string // HTTP verb
	path   string
}

var caseRPCs = []rpcDef{
	{name: "FilterReportCases", input: structType, method: "POST", path: "/api/cases/filtered"},
	{name: "Query", input: structType, method: "POST", path: "/api/query"},
	{name: "Compile", input: structType, method: "POST", path: "/api/filters/compile"},
	{name: "ListFields", input: emptyType, method: "GET", path: "/api/fields"},
}

var (
	registerOnce sync.Once
	caseService  protoreflect.ServiceDescriptor
	registerErr  error
)

// CaseServiceDescriptor returns the service descriptor, registering its file
// in protoregistry.GlobalFiles on first use so Vanguard can resolve the
// service and its HTTP rules by name.
func CaseServiceDescriptor() (protoreflect.ServiceDescriptor, error) {
	registerOnce.Do(func() {
		fd, err := protodesc.NewFile(caseServiceFile(), protoregistry.GlobalFiles)
		if err != nil {
			registerErr = fmt.Errorf("build case service descriptor: %w", err)
			return
		}
		if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
			registerErr = fmt.Errorf("register case service descriptor: %w", err)
			return
		}
		caseService = fd.Services().ByName("CaseService")
	})
	return caseService, registerErr
}

func caseServiceFile() *descriptorpb.FileDescriptorProto {
	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String("CaseService")}
	for _, rpc := range caseRPCs {
		opts := &descriptorpb.MethodOptions{}
		proto.SetExtension(opts, annotations.E_Http, httpRule(rpc))
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(rpc.name),
			InputType:  proto.String(rpc.input),
			OutputType: proto.String(structType),
			Options:    opts,
		})
	}
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("casewatch/v1/case.proto"),
		Package: proto.String("casewatch.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/api/annotations.proto",
			"google/protobuf/empty.proto",
			"google/protobuf/struct.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{svc},
	}
}

func httpRule(rpc rpcDef) *annotations.HttpRule {
	rule := &annotations.HttpRule{}
	switch rpc.method {
	case "GET":
		rule.Pattern = &annotations.HttpRule_Get{Get: rpc.path}
	default:
		rule.Pattern = &annotations.HttpRule_Post{Post: rpc.path}
		rule.Body = "*"
	}
	return rule
}
