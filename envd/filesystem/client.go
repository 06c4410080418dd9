package filesystem

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/qiniu/sandbox-go/envd"
)

// 文件系统服务的 Connect procedure 路径。
const (
	StatProcedure     = "/filesystem.Filesystem/Stat"
	MakeDirProcedure  = "/filesystem.Filesystem/MakeDir"
	MoveProcedure     = "/filesystem.Filesystem/Move"
	ListDirProcedure  = "/filesystem.Filesystem/ListDir"
	RemoveProcedure   = "/filesystem.Filesystem/Remove"
	WatchDirProcedure = "/filesystem.Filesystem/WatchDir"
)

const servicePrefix = "/filesystem.Filesystem/"

// FilesystemClient 文件系统服务客户端。
type FilesystemClient interface {
	Stat(ctx context.Context, req *connect.Request[StatRequest]) (*connect.Response[StatResponse], error)
	MakeDir(ctx context.Context, req *connect.Request[MakeDirRequest]) (*connect.Response[MakeDirResponse], error)
	Move(ctx context.Context, req *connect.Request[MoveRequest]) (*connect.Response[MoveResponse], error)
	ListDir(ctx context.Context, req *connect.Request[ListDirRequest]) (*connect.Response[ListDirResponse], error)
	Remove(ctx context.Context, req *connect.Request[RemoveRequest]) (*connect.Response[RemoveResponse], error)
	WatchDir(ctx context.Context, req *connect.Request[WatchDirRequest]) (*connect.ServerStreamForClient[WatchDirResponse], error)
}

type filesystemClient struct {
	stat     *connect.Client[StatRequest, StatResponse]
	makeDir  *connect.Client[MakeDirRequest, MakeDirResponse]
	move     *connect.Client[MoveRequest, MoveResponse]
	listDir  *connect.Client[ListDirRequest, ListDirResponse]
	remove   *connect.Client[RemoveRequest, RemoveResponse]
	watchDir *connect.Client[WatchDirRequest, WatchDirResponse]
}

// NewFilesystemClient 创建文件系统服务客户端。baseURL 为 envd 的基础地址。
func NewFilesystemClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FilesystemClient {
	opts = append([]connect.ClientOption{connect.WithCodec(envd.JSONCodec{})}, opts...)
	return &filesystemClient{
		stat:     connect.NewClient[StatRequest, StatResponse](httpClient, baseURL+StatProcedure, opts...),
		makeDir:  connect.NewClient[MakeDirRequest, MakeDirResponse](httpClient, baseURL+MakeDirProcedure, opts...),
		move:     connect.NewClient[MoveRequest, MoveResponse](httpClient, baseURL+MoveProcedure, opts...),
		listDir:  connect.NewClient[ListDirRequest, ListDirResponse](httpClient, baseURL+ListDirProcedure, opts...),
		remove:   connect.NewClient[RemoveRequest, RemoveResponse](httpClient, baseURL+RemoveProcedure, opts...),
		watchDir: connect.NewClient[WatchDirRequest, WatchDirResponse](httpClient, baseURL+WatchDirProcedure, opts...),
	}
}

func (c *filesystemClient) Stat(ctx context.Context, req *connect.Request[StatRequest]) (*connect.Response[StatResponse], error) {
	return c.stat.CallUnary(ctx, req)
}

func (c *filesystemClient) MakeDir(ctx context.Context, req *connect.Request[MakeDirRequest]) (*connect.Response[MakeDirResponse], error) {
	return c.makeDir.CallUnary(ctx, req)
}

func (c *filesystemClient) Move(ctx context.Context, req *connect.Request[MoveRequest]) (*connect.Response[MoveResponse], error) {
	return c.move.CallUnary(ctx, req)
}

func (c *filesystemClient) ListDir(ctx context.Context, req *connect.Request[ListDirRequest]) (*connect.Response[ListDirResponse], error) {
	return c.listDir.CallUnary(ctx, req)
}

func (c *filesystemClient) Remove(ctx context.Context, req *connect.Request[RemoveRequest]) (*connect.Response[RemoveResponse], error) {
	return c.remove.CallUnary(ctx, req)
}

func (c *filesystemClient) WatchDir(ctx context.Context, req *connect.Request[WatchDirRequest]) (*connect.ServerStreamForClient[WatchDirResponse], error) {
	return c.watchDir.CallServerStream(ctx, req)
}

// FilesystemHandler 文件系统服务的服务端接口。主要用于测试中的 mock 服务。
type FilesystemHandler interface {
	Stat(ctx context.Context, req *connect.Request[StatRequest]) (*connect.Response[StatResponse], error)
	MakeDir(ctx context.Context, req *connect.Request[MakeDirRequest]) (*connect.Response[MakeDirResponse], error)
	Move(ctx context.Context, req *connect.Request[MoveRequest]) (*connect.Response[MoveResponse], error)
	ListDir(ctx context.Context, req *connect.Request[ListDirRequest]) (*connect.Response[ListDirResponse], error)
	Remove(ctx context.Context, req *connect.Request[RemoveRequest]) (*connect.Response[RemoveResponse], error)
	WatchDir(ctx context.Context, req *connect.Request[WatchDirRequest], stream *connect.ServerStream[WatchDirResponse]) error
}

// NewFilesystemHandler 构造文件系统服务的 HTTP handler。
// 返回挂载路径前缀和 handler 本体。
func NewFilesystemHandler(svc FilesystemHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(envd.JSONCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(StatProcedure, connect.NewUnaryHandler(StatProcedure, svc.Stat, opts...))
	mux.Handle(MakeDirProcedure, connect.NewUnaryHandler(MakeDirProcedure, svc.MakeDir, opts...))
	mux.Handle(MoveProcedure, connect.NewUnaryHandler(MoveProcedure, svc.Move, opts...))
	mux.Handle(ListDirProcedure, connect.NewUnaryHandler(ListDirProcedure, svc.ListDir, opts...))
	mux.Handle(RemoveProcedure, connect.NewUnaryHandler(RemoveProcedure, svc.Remove, opts...))
	mux.Handle(WatchDirProcedure, connect.NewServerStreamHandler(WatchDirProcedure, svc.WatchDir, opts...))
	return servicePrefix, mux
}

// UnimplementedFilesystemHandler 所有方法均返回 CodeUnimplemented。
type UnimplementedFilesystemHandler struct{}

func (UnimplementedFilesystemHandler) Stat(context.Context, *connect.Request[StatRequest]) (*connect.Response[StatResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("filesystem.Filesystem.Stat is not implemented"))
}

func (UnimplementedFilesystemHandler) MakeDir(context.Context, *connect.Request[MakeDirRequest]) (*connect.Response[MakeDirResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("filesystem.Filesystem.MakeDir is not implemented"))
}

func (UnimplementedFilesystemHandler) Move(context.Context, *connect.Request[MoveRequest]) (*connect.Response[MoveResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("filesystem.Filesystem.Move is not implemented"))
}

func (UnimplementedFilesystemHandler) ListDir(context.Context, *connect.Request[ListDirRequest]) (*connect.Response[ListDirResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("filesystem.Filesystem.ListDir is not implemented"))
}

func (UnimplementedFilesystemHandler) Remove(context.Context, *connect.Request[RemoveRequest]) (*connect.Response[RemoveResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("filesystem.Filesystem.Remove is not implemented"))
}

func (UnimplementedFilesystemHandler) WatchDir(context.Context, *connect.Request[WatchDirRequest], *connect.ServerStream[WatchDirResponse]) error {
	return connect.NewError(connect.CodeUnimplemented, fmt.Errorf("filesystem.Filesystem.WatchDir is not implemented"))
}
