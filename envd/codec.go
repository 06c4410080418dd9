// Package envd 提供沙箱内 envd agent 的 ConnectRPC 协议基础。
//
// envd 协议消息是普通 Go 结构体（非 protobuf 生成代码），
// 客户端与服务端通过统一的 JSON 编解码器通信。
package envd

import (
	"encoding/json"
	"fmt"
)

// JSONCodec 是基于 encoding/json 的 Connect 编解码器。
// 注册名为 "json"，对应 application/json（一元调用）和
// application/connect+json（流式调用）。
type JSONCodec struct{}

// Name 返回编解码器名称。
func (JSONCodec) Name() string { return "json" }

// Marshal 序列化消息。
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal 反序列化消息。空负载视为零值消息。
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("envd json codec: %w", err)
	}
	return nil
}
