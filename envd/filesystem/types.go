// Package filesystem 定义 envd 文件系统服务的协议消息与 ConnectRPC 客户端。
package filesystem

import "time"

// FileType 文件类型。
type FileType string

// 文件类型常量。
const (
	FileTypeFile      FileType = "file"
	FileTypeDirectory FileType = "directory"
)

// EntryInfo 文件或目录的元信息。
type EntryInfo struct {
	Name          string    `json:"name"`
	Type          FileType  `json:"type"`
	Path          string    `json:"path"`
	Size          int64     `json:"size,omitempty"`
	Mode          uint32    `json:"mode,omitempty"`
	Permissions   string    `json:"permissions,omitempty"`
	Owner         string    `json:"owner,omitempty"`
	Group         string    `json:"group,omitempty"`
	ModifiedTime  time.Time `json:"modified_time,omitempty"`
	SymlinkTarget *string   `json:"symlink_target,omitempty"`
}

// EventType 文件系统事件类型。
type EventType string

// 文件系统事件类型常量。
const (
	EventTypeCreate EventType = "create"
	EventTypeWrite  EventType = "write"
	EventTypeRemove EventType = "remove"
	EventTypeRename EventType = "rename"
	EventTypeChmod  EventType = "chmod"
)

// FilesystemEvent 文件系统变更事件。
type FilesystemEvent struct {
	Name string    `json:"name"`
	Type EventType `json:"type"`
}

// StatRequest Stat 请求。
type StatRequest struct {
	Path string `json:"path"`
}

// StatResponse Stat 响应。
type StatResponse struct {
	Entry *EntryInfo `json:"entry,omitempty"`
}

// MakeDirRequest 创建目录请求。
type MakeDirRequest struct {
	Path string `json:"path"`
}

// MakeDirResponse 创建目录响应。
type MakeDirResponse struct {
	Entry *EntryInfo `json:"entry,omitempty"`
}

// MoveRequest 移动/重命名请求。
type MoveRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// MoveResponse 移动/重命名响应。
type MoveResponse struct {
	Entry *EntryInfo `json:"entry,omitempty"`
}

// ListDirRequest 列目录请求。
type ListDirRequest struct {
	Path  string `json:"path"`
	Depth uint32 `json:"depth,omitempty"`
}

// ListDirResponse 列目录响应。
type ListDirResponse struct {
	Entries []*EntryInfo `json:"entries,omitempty"`
}

// RemoveRequest 删除请求。
type RemoveRequest struct {
	Path string `json:"path"`
}

// RemoveResponse 删除响应。
type RemoveResponse struct{}

// WatchDirRequest 监听目录请求。
type WatchDirRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive,omitempty"`
}

// WatchDirResponse 监听目录流式响应，带标签联合：恰好一个变体非 nil。
type WatchDirResponse struct {
	Start      *WatchStartEvent `json:"start,omitempty"`
	Filesystem *FilesystemEvent `json:"filesystem,omitempty"`
	Keepalive  *KeepaliveEvent  `json:"keepalive,omitempty"`
}

// GetFilesystem 返回文件系统事件变体（可能为 nil）。
func (r *WatchDirResponse) GetFilesystem() *FilesystemEvent {
	if r == nil {
		return nil
	}
	return r.Filesystem
}

// WatchStartEvent 监听已建立。
type WatchStartEvent struct{}

// KeepaliveEvent 保活事件，消费方忽略。
type KeepaliveEvent struct{}
