package sandbox

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
)

// multipartFileWriter 构造 envd 文件上传接口所需的 multipart/form-data body。
//
// envd 的上传接口有两种寻址方式：单文件上传从 URL 的 path 参数取目标路径，
// part filename 只作展示；批量上传则从每个 part 的 filename 读取完整目标路径。
// writeFile 与 writeFileFullPath 分别对应这两种形态。
type multipartFileWriter struct {
	w *multipart.Writer
}

func newMultipartWriter(w io.Writer) *multipartFileWriter {
	return &multipartFileWriter{w: multipart.NewWriter(w)}
}

// contentType 返回带 boundary 的 Content-Type，用于设置请求头。
func (m *multipartFileWriter) contentType() string {
	return m.w.FormDataContentType()
}

// writeFile 追加一个文件 part，filename 取路径的最后一段。
// 用于单文件上传：目标路径已在 URL 中，filename 不参与寻址。
func (m *multipartFileWriter) writeFile(fieldName, fileName string, data []byte) error {
	part, err := m.w.CreateFormFile(fieldName, filepath.Base(fileName))
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

// writeFileFullPath 追加一个文件 part，filename 保留完整目标路径。
// 批量上传时 envd 按 part filename 落盘，必须绕开 CreateFormFile
// 对 filename 的 Base 截断，手工构造 part 头。
func (m *multipartFileWriter) writeFileFullPath(fieldName, fullPath string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldName, fullPath))
	h.Set("Content-Type", "application/octet-stream")
	part, err := m.w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

// close 写入结尾 boundary。必须在请求 body 发送完成前调用。
func (m *multipartFileWriter) close() error {
	return m.w.Close()
}
