package process

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/qiniu/sandbox-go/envd"
)

// 进程服务的 Connect procedure 路径。
const (
	StartProcedure      = "/process.Process/Start"
	ConnectProcedure    = "/process.Process/Connect"
	ListProcedure       = "/process.Process/List"
	SendInputProcedure  = "/process.Process/SendInput"
	SendSignalProcedure = "/process.Process/SendSignal"
	UpdateProcedure     = "/process.Process/Update"
)

// servicePrefix 是进程服务所有 procedure 的公共路径前缀。
const servicePrefix = "/process.Process/"

// ProcessClient 进程服务客户端。
type ProcessClient interface {
	Start(ctx context.Context, req *connect.Request[StartRequest]) (*connect.ServerStreamForClient[StartResponse], error)
	Connect(ctx context.Context, req *connect.Request[ConnectRequest]) (*connect.ServerStreamForClient[ConnectResponse], error)
	List(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse], error)
	SendInput(ctx context.Context, req *connect.Request[SendInputRequest]) (*connect.Response[SendInputResponse], error)
	SendSignal(ctx context.Context, req *connect.Request[SendSignalRequest]) (*connect.Response[SendSignalResponse], error)
	Update(ctx context.Context, req *connect.Request[UpdateRequest]) (*connect.Response[UpdateResponse], error)
}

type processClient struct {
	start      *connect.Client[StartRequest, StartResponse]
	connect    *connect.Client[ConnectRequest, ConnectResponse]
	list       *connect.Client[ListRequest, ListResponse]
	sendInput  *connect.Client[SendInputRequest, SendInputResponse]
	sendSignal *connect.Client[SendSignalRequest, SendSignalResponse]
	update     *connect.Client[UpdateRequest, UpdateResponse]
}

// NewProcessClient 创建进程服务客户端。baseURL 为 envd 的基础地址（不含路径）。
func NewProcessClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ProcessClient {
	opts = append([]connect.ClientOption{connect.WithCodec(envd.JSONCodec{})}, opts...)
	return &processClient{
		start:      connect.NewClient[StartRequest, StartResponse](httpClient, baseURL+StartProcedure, opts...),
		connect:    connect.NewClient[ConnectRequest, ConnectResponse](httpClient, baseURL+ConnectProcedure, opts...),
		list:       connect.NewClient[ListRequest, ListResponse](httpClient, baseURL+ListProcedure, opts...),
		sendInput:  connect.NewClient[SendInputRequest, SendInputResponse](httpClient, baseURL+SendInputProcedure, opts...),
		sendSignal: connect.NewClient[SendSignalRequest, SendSignalResponse](httpClient, baseURL+SendSignalProcedure, opts...),
		update:     connect.NewClient[UpdateRequest, UpdateResponse](httpClient, baseURL+UpdateProcedure, opts...),
	}
}

func (c *processClient) Start(ctx context.Context, req *connect.Request[StartRequest]) (*connect.ServerStreamForClient[StartResponse], error) {
	return c.start.CallServerStream(ctx, req)
}

func (c *processClient) Connect(ctx context.Context, req *connect.Request[ConnectRequest]) (*connect.ServerStreamForClient[ConnectResponse], error) {
	return c.connect.CallServerStream(ctx, req)
}

func (c *processClient) List(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *processClient) SendInput(ctx context.Context, req *connect.Request[SendInputRequest]) (*connect.Response[SendInputResponse], error) {
	return c.sendInput.CallUnary(ctx, req)
}

func (c *processClient) SendSignal(ctx context.Context, req *connect.Request[SendSignalRequest]) (*connect.Response[SendSignalResponse], error) {
	return c.sendSignal.CallUnary(ctx, req)
}

func (c *processClient) Update(ctx context.Context, req *connect.Request[UpdateRequest]) (*connect.Response[UpdateResponse], error) {
	return c.update.CallUnary(ctx, req)
}

// ProcessHandler 进程服务的服务端接口。主要用于测试中的 mock 服务。
type ProcessHandler interface {
	Start(ctx context.Context, req *connect.Request[StartRequest], stream *connect.ServerStream[StartResponse]) error
	Connect(ctx context.Context, req *connect.Request[ConnectRequest], stream *connect.ServerStream[ConnectResponse]) error
	List(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse], error)
	SendInput(ctx context.Context, req *connect.Request[SendInputRequest]) (*connect.Response[SendInputResponse], error)
	SendSignal(ctx context.Context, req *connect.Request[SendSignalRequest]) (*connect.Response[SendSignalResponse], error)
	Update(ctx context.Context, req *connect.Request[UpdateRequest]) (*connect.Response[UpdateResponse], error)
}

// NewProcessHandler 构造进程服务的 HTTP handler。
// 返回挂载路径前缀和 handler 本体。
func NewProcessHandler(svc ProcessHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(envd.JSONCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(StartProcedure, connect.NewServerStreamHandler(StartProcedure, svc.Start, opts...))
	mux.Handle(ConnectProcedure, connect.NewServerStreamHandler(ConnectProcedure, svc.Connect, opts...))
	mux.Handle(ListProcedure, connect.NewUnaryHandler(ListProcedure, svc.List, opts...))
	mux.Handle(SendInputProcedure, connect.NewUnaryHandler(SendInputProcedure, svc.SendInput, opts...))
	mux.Handle(SendSignalProcedure, connect.NewUnaryHandler(SendSignalProcedure, svc.SendSignal, opts...))
	mux.Handle(UpdateProcedure, connect.NewUnaryHandler(UpdateProcedure, svc.Update, opts...))
	return servicePrefix, mux
}

// UnimplementedProcessHandler 所有方法均返回 CodeUnimplemented。
// 嵌入后按需覆盖单个方法。
type UnimplementedProcessHandler struct{}

func (UnimplementedProcessHandler) Start(context.Context, *connect.Request[StartRequest], *connect.ServerStream[StartResponse]) error {
	return connect.NewError(connect.CodeUnimplemented, fmt.Errorf("process.Process.Start is not implemented"))
}

func (UnimplementedProcessHandler) Connect(context.Context, *connect.Request[ConnectRequest], *connect.ServerStream[ConnectResponse]) error {
	return connect.NewError(connect.CodeUnimplemented, fmt.Errorf("process.Process.Connect is not implemented"))
}

func (UnimplementedProcessHandler) List(context.Context, *connect.Request[ListRequest]) (*connect.Response[ListResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("process.Process.List is not implemented"))
}

func (UnimplementedProcessHandler) SendInput(context.Context, *connect.Request[SendInputRequest]) (*connect.Response[SendInputResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("process.Process.SendInput is not implemented"))
}

func (UnimplementedProcessHandler) SendSignal(context.Context, *connect.Request[SendSignalRequest]) (*connect.Response[SendSignalResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("process.Process.SendSignal is not implemented"))
}

func (UnimplementedProcessHandler) Update(context.Context, *connect.Request[UpdateRequest]) (*connect.Response[UpdateResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("process.Process.Update is not implemented"))
}
