// Package apis 是沙箱控制面 REST API 的客户端。
//
// 手写实现，保留 oapi-codegen 生成客户端的响应结构风格
// （XxxWithResponse 方法、StatusCode()、JSON200 等字段），
// 查询参数编码使用 oapi-codegen runtime 的样式化工具。
package apis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// RequestEditorFn 在请求发出前修改请求（如注入认证头）。
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client 控制面 API 客户端。
type Client struct {
	endpoint   string
	httpClient *http.Client
	editors    []RequestEditorFn
}

// ClientOption 客户端选项。
type ClientOption func(*Client)

// WithHTTPClient 设置自定义 HTTP 客户端。
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestEditorFn 追加一个请求编辑函数。
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) { c.editors = append(c.editors, fn) }
}

// NewClientWithResponses 创建控制面 API 客户端。
func NewClientWithResponses(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("apis: endpoint is required")
	}
	c := &Client{endpoint: strings.TrimRight(endpoint, "/")}
	for _, fn := range opts {
		fn(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// do 构造并发出一次 JSON 请求，返回响应和完整 body。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, editors []RequestEditorFn) (*http.Response, []byte, error) {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("apis: marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, fn := range c.editors {
		if err := fn(ctx, req); err != nil {
			return nil, nil, err
		}
	}
	for _, fn := range editors {
		if err := fn(ctx, req); err != nil {
			return nil, nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, data, nil
}

// addQueryParam 按 OpenAPI "form" 风格编码一个查询参数并合并进 q。
func addQueryParam(q url.Values, name string, value any) error {
	frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("apis: encode query param %s: %w", name, err)
	}
	parsed, err := url.ParseQuery(frag)
	if err != nil {
		return fmt.Errorf("apis: encode query param %s: %w", name, err)
	}
	for k, vs := range parsed {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return nil
}

func decodeInto[T any](data []byte) (*T, error) {
	var dest T
	if err := json.Unmarshal(data, &dest); err != nil {
		return nil, fmt.Errorf("apis: decode response: %w", err)
	}
	return &dest, nil
}

// ---------------------------------------------------------------------------
// 请求体别名
// ---------------------------------------------------------------------------

// CreateSandboxJSONRequestBody 创建沙箱请求体。
type CreateSandboxJSONRequestBody = NewSandbox

// ConnectSandboxJSONRequestBody 连接沙箱请求体。
type ConnectSandboxJSONRequestBody struct {
	Timeout int32 `json:"timeout"`
}

// UpdateSandboxTimeoutJSONRequestBody 更新沙箱超时请求体。
type UpdateSandboxTimeoutJSONRequestBody struct {
	Timeout int32 `json:"timeout"`
}

// RefreshSandboxJSONRequestBody 延长沙箱存活时间请求体。
type RefreshSandboxJSONRequestBody struct {
	Duration *int `json:"duration,omitempty"`
}

// CreateTemplateJSONRequestBody 创建模板请求体。
type CreateTemplateJSONRequestBody = NewTemplate

// UpdateTemplateJSONRequestBody 更新模板请求体。
type UpdateTemplateJSONRequestBody = TemplateUpdate

// StartTemplateBuildJSONRequestBody 启动模板构建请求体。
type StartTemplateBuildJSONRequestBody = TemplateBuildStart

// ManageTemplateTagsJSONRequestBody 管理模板标签请求体。
type ManageTemplateTagsJSONRequestBody = ManageTemplateTagsBody

// DeleteTemplateTagsJSONRequestBody 删除模板标签请求体。
type DeleteTemplateTagsJSONRequestBody = DeleteTemplateTagsBody

// ---------------------------------------------------------------------------
// 响应类型
// ---------------------------------------------------------------------------

// HealthCheckResponse 健康检查响应。
type HealthCheckResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *HealthCheckResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// CreateSandboxResponse 创建沙箱响应。
type CreateSandboxResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON201      *Sandbox
}

// StatusCode 返回 HTTP 状态码。
func (r *CreateSandboxResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetSandboxResponse 获取沙箱详情响应。
type GetSandboxResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *SandboxDetail
}

// StatusCode 返回 HTTP 状态码。
func (r *GetSandboxResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// DeleteSandboxResponse 删除沙箱响应。
type DeleteSandboxResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *DeleteSandboxResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// ListSandboxesResponse 列出沙箱响应（v1）。
type ListSandboxesResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *[]ListedSandbox
}

// StatusCode 返回 HTTP 状态码。
func (r *ListSandboxesResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// ListSandboxesV2Response 列出沙箱响应（v2，分页）。
type ListSandboxesV2Response struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *SandboxListPage
}

// StatusCode 返回 HTTP 状态码。
func (r *ListSandboxesV2Response) StatusCode() int { return statusCode(r.HTTPResponse) }

// ConnectSandboxResponse 连接沙箱响应。
type ConnectSandboxResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *Sandbox
	JSON201      *Sandbox
}

// StatusCode 返回 HTTP 状态码。
func (r *ConnectSandboxResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// UpdateSandboxTimeoutResponse 更新沙箱超时响应。
type UpdateSandboxTimeoutResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *UpdateSandboxTimeoutResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// PauseSandboxResponse 暂停沙箱响应。
type PauseSandboxResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *PauseSandboxResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// RefreshSandboxResponse 延长沙箱存活时间响应。
type RefreshSandboxResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *RefreshSandboxResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetSandboxMetricsResponse 获取沙箱指标响应。
type GetSandboxMetricsResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *[]SandboxMetric
}

// StatusCode 返回 HTTP 状态码。
func (r *GetSandboxMetricsResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetSandboxLogsResponse 获取沙箱日志响应。
type GetSandboxLogsResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *SandboxLogs
}

// StatusCode 返回 HTTP 状态码。
func (r *GetSandboxLogsResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetSandboxesMetricsResponse 批量获取沙箱指标响应。
type GetSandboxesMetricsResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *SandboxesWithMetrics
}

// StatusCode 返回 HTTP 状态码。
func (r *GetSandboxesMetricsResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// ListTemplatesResponse 列出模板响应。
type ListTemplatesResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *[]Template
}

// StatusCode 返回 HTTP 状态码。
func (r *ListTemplatesResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// CreateTemplateResponse 创建模板响应。
type CreateTemplateResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON202      *TemplateRequestResponse
}

// StatusCode 返回 HTTP 状态码。
func (r *CreateTemplateResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetTemplateResponse 获取模板详情响应。
type GetTemplateResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *TemplateWithBuilds
}

// StatusCode 返回 HTTP 状态码。
func (r *GetTemplateResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// DeleteTemplateResponse 删除模板响应。
type DeleteTemplateResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *DeleteTemplateResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// UpdateTemplateResponse 更新模板响应。
type UpdateTemplateResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *UpdateTemplateResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetTemplateBuildStatusResponse 获取构建状态响应。
type GetTemplateBuildStatusResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *TemplateBuildInfo
}

// StatusCode 返回 HTTP 状态码。
func (r *GetTemplateBuildStatusResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetTemplateBuildLogsResponse 获取构建日志响应。
type GetTemplateBuildLogsResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *TemplateBuildLogsResponse
}

// StatusCode 返回 HTTP 状态码。
func (r *GetTemplateBuildLogsResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// StartTemplateBuildResponse 启动模板构建响应。
type StartTemplateBuildResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *StartTemplateBuildResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetTemplateFilesResponse 获取模板构建文件上传链接响应。
type GetTemplateFilesResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON201      *TemplateBuildFileUpload
}

// StatusCode 返回 HTTP 状态码。
func (r *GetTemplateFilesResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// GetTemplateByAliasResponse 按别名查询模板响应。
type GetTemplateByAliasResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON200      *TemplateAliasResponse
}

// StatusCode 返回 HTTP 状态码。
func (r *GetTemplateByAliasResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// ManageTemplateTagsResponse 管理模板标签响应。
type ManageTemplateTagsResponse struct {
	HTTPResponse *http.Response
	Body         []byte
	JSON201      *AssignedTemplateTags
}

// StatusCode 返回 HTTP 状态码。
func (r *ManageTemplateTagsResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

// DeleteTemplateTagsResponse 删除模板标签响应。
type DeleteTemplateTagsResponse struct {
	HTTPResponse *http.Response
	Body         []byte
}

// StatusCode 返回 HTTP 状态码。
func (r *DeleteTemplateTagsResponse) StatusCode() int { return statusCode(r.HTTPResponse) }

func statusCode(r *http.Response) int {
	if r == nil {
		return 0
	}
	return r.StatusCode
}

// ---------------------------------------------------------------------------
// 接口定义
// ---------------------------------------------------------------------------

// ClientWithResponsesInterface 控制面 API 客户端接口。
type ClientWithResponsesInterface interface {
	HealthCheckWithResponse(ctx context.Context, editors ...RequestEditorFn) (*HealthCheckResponse, error)

	CreateSandboxWithResponse(ctx context.Context, body CreateSandboxJSONRequestBody, editors ...RequestEditorFn) (*CreateSandboxResponse, error)
	GetSandboxWithResponse(ctx context.Context, sandboxID SandboxID, editors ...RequestEditorFn) (*GetSandboxResponse, error)
	DeleteSandboxWithResponse(ctx context.Context, sandboxID SandboxID, editors ...RequestEditorFn) (*DeleteSandboxResponse, error)
	ListSandboxesWithResponse(ctx context.Context, params *ListSandboxesParams, editors ...RequestEditorFn) (*ListSandboxesResponse, error)
	ListSandboxesV2WithResponse(ctx context.Context, params *ListSandboxesV2Params, editors ...RequestEditorFn) (*ListSandboxesV2Response, error)
	ConnectSandboxWithResponse(ctx context.Context, sandboxID SandboxID, body ConnectSandboxJSONRequestBody, editors ...RequestEditorFn) (*ConnectSandboxResponse, error)
	UpdateSandboxTimeoutWithResponse(ctx context.Context, sandboxID SandboxID, body UpdateSandboxTimeoutJSONRequestBody, editors ...RequestEditorFn) (*UpdateSandboxTimeoutResponse, error)
	PauseSandboxWithResponse(ctx context.Context, sandboxID SandboxID, editors ...RequestEditorFn) (*PauseSandboxResponse, error)
	RefreshSandboxWithResponse(ctx context.Context, sandboxID SandboxID, body RefreshSandboxJSONRequestBody, editors ...RequestEditorFn) (*RefreshSandboxResponse, error)
	GetSandboxMetricsWithResponse(ctx context.Context, sandboxID SandboxID, params *GetSandboxMetricsParams, editors ...RequestEditorFn) (*GetSandboxMetricsResponse, error)
	GetSandboxLogsWithResponse(ctx context.Context, sandboxID SandboxID, params *GetSandboxLogsParams, editors ...RequestEditorFn) (*GetSandboxLogsResponse, error)
	GetSandboxesMetricsWithResponse(ctx context.Context, params *GetSandboxesMetricsParams, editors ...RequestEditorFn) (*GetSandboxesMetricsResponse, error)

	ListTemplatesWithResponse(ctx context.Context, params *ListTemplatesParams, editors ...RequestEditorFn) (*ListTemplatesResponse, error)
	CreateTemplateWithResponse(ctx context.Context, body CreateTemplateJSONRequestBody, editors ...RequestEditorFn) (*CreateTemplateResponse, error)
	GetTemplateWithResponse(ctx context.Context, templateID TemplateID, params *GetTemplateParams, editors ...RequestEditorFn) (*GetTemplateResponse, error)
	DeleteTemplateWithResponse(ctx context.Context, templateID TemplateID, editors ...RequestEditorFn) (*DeleteTemplateResponse, error)
	UpdateTemplateWithResponse(ctx context.Context, templateID TemplateID, body UpdateTemplateJSONRequestBody, editors ...RequestEditorFn) (*UpdateTemplateResponse, error)
	GetTemplateBuildStatusWithResponse(ctx context.Context, templateID TemplateID, buildID BuildID, params *GetTemplateBuildStatusParams, editors ...RequestEditorFn) (*GetTemplateBuildStatusResponse, error)
	GetTemplateBuildLogsWithResponse(ctx context.Context, templateID TemplateID, buildID BuildID, params *GetTemplateBuildLogsParams, editors ...RequestEditorFn) (*GetTemplateBuildLogsResponse, error)
	StartTemplateBuildWithResponse(ctx context.Context, templateID TemplateID, buildID BuildID, body StartTemplateBuildJSONRequestBody, editors ...RequestEditorFn) (*StartTemplateBuildResponse, error)
	GetTemplateFilesWithResponse(ctx context.Context, templateID TemplateID, hash string, editors ...RequestEditorFn) (*GetTemplateFilesResponse, error)
	GetTemplateByAliasWithResponse(ctx context.Context, alias string, editors ...RequestEditorFn) (*GetTemplateByAliasResponse, error)
	ManageTemplateTagsWithResponse(ctx context.Context, body ManageTemplateTagsJSONRequestBody, editors ...RequestEditorFn) (*ManageTemplateTagsResponse, error)
	DeleteTemplateTagsWithResponse(ctx context.Context, body DeleteTemplateTagsJSONRequestBody, editors ...RequestEditorFn) (*DeleteTemplateTagsResponse, error)
}

var _ ClientWithResponsesInterface = (*Client)(nil)

// ---------------------------------------------------------------------------
// 沙箱操作
// ---------------------------------------------------------------------------

// HealthCheckWithResponse 对 API 执行健康检查。
func (c *Client) HealthCheckWithResponse(ctx context.Context, editors ...RequestEditorFn) (*HealthCheckResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodGet, "/health", nil, nil, editors)
	if err != nil {
		return nil, err
	}
	return &HealthCheckResponse{HTTPResponse: rsp, Body: data}, nil
}

// CreateSandboxWithResponse 创建沙箱。
func (c *Client) CreateSandboxWithResponse(ctx context.Context, body CreateSandboxJSONRequestBody, editors ...RequestEditorFn) (*CreateSandboxResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/sandboxes", nil, body, editors)
	if err != nil {
		return nil, err
	}
	out := &CreateSandboxResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusCreated {
		if out.JSON201, err = decodeInto[Sandbox](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetSandboxWithResponse 获取沙箱详情。
func (c *Client) GetSandboxWithResponse(ctx context.Context, sandboxID SandboxID, editors ...RequestEditorFn) (*GetSandboxResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodGet, "/sandboxes/"+url.PathEscape(sandboxID), nil, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetSandboxResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[SandboxDetail](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteSandboxWithResponse 删除（终止）沙箱。
func (c *Client) DeleteSandboxWithResponse(ctx context.Context, sandboxID SandboxID, editors ...RequestEditorFn) (*DeleteSandboxResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodDelete, "/sandboxes/"+url.PathEscape(sandboxID), nil, nil, editors)
	if err != nil {
		return nil, err
	}
	return &DeleteSandboxResponse{HTTPResponse: rsp, Body: data}, nil
}

// ListSandboxesWithResponse 列出沙箱（v1）。
func (c *Client) ListSandboxesWithResponse(ctx context.Context, params *ListSandboxesParams, editors ...RequestEditorFn) (*ListSandboxesResponse, error) {
	q := url.Values{}
	if params != nil && params.Metadata != nil {
		if err := addQueryParam(q, "metadata", *params.Metadata); err != nil {
			return nil, err
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/sandboxes", q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &ListSandboxesResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[[]ListedSandbox](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListSandboxesV2WithResponse 列出沙箱（v2，支持分页与状态过滤）。
func (c *Client) ListSandboxesV2WithResponse(ctx context.Context, params *ListSandboxesV2Params, editors ...RequestEditorFn) (*ListSandboxesV2Response, error) {
	q := url.Values{}
	if params != nil {
		if params.Metadata != nil {
			if err := addQueryParam(q, "metadata", *params.Metadata); err != nil {
				return nil, err
			}
		}
		if params.State != nil {
			if err := addQueryParam(q, "state", *params.State); err != nil {
				return nil, err
			}
		}
		if params.NextToken != nil {
			if err := addQueryParam(q, "nextToken", *params.NextToken); err != nil {
				return nil, err
			}
		}
		if params.Limit != nil {
			if err := addQueryParam(q, "limit", *params.Limit); err != nil {
				return nil, err
			}
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/v2/sandboxes", q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &ListSandboxesV2Response{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[SandboxListPage](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ConnectSandboxWithResponse 连接沙箱，可恢复已暂停的沙箱。
func (c *Client) ConnectSandboxWithResponse(ctx context.Context, sandboxID SandboxID, body ConnectSandboxJSONRequestBody, editors ...RequestEditorFn) (*ConnectSandboxResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/connect", nil, body, editors)
	if err != nil {
		return nil, err
	}
	out := &ConnectSandboxResponse{HTTPResponse: rsp, Body: data}
	switch rsp.StatusCode {
	case http.StatusOK:
		if out.JSON200, err = decodeInto[Sandbox](data); err != nil {
			return nil, err
		}
	case http.StatusCreated:
		if out.JSON201, err = decodeInto[Sandbox](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateSandboxTimeoutWithResponse 更新沙箱超时时间。
func (c *Client) UpdateSandboxTimeoutWithResponse(ctx context.Context, sandboxID SandboxID, body UpdateSandboxTimeoutJSONRequestBody, editors ...RequestEditorFn) (*UpdateSandboxTimeoutResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/timeout", nil, body, editors)
	if err != nil {
		return nil, err
	}
	return &UpdateSandboxTimeoutResponse{HTTPResponse: rsp, Body: data}, nil
}

// PauseSandboxWithResponse 暂停沙箱。
func (c *Client) PauseSandboxWithResponse(ctx context.Context, sandboxID SandboxID, editors ...RequestEditorFn) (*PauseSandboxResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/pause", nil, nil, editors)
	if err != nil {
		return nil, err
	}
	return &PauseSandboxResponse{HTTPResponse: rsp, Body: data}, nil
}

// RefreshSandboxWithResponse 延长沙箱存活时间。
func (c *Client) RefreshSandboxWithResponse(ctx context.Context, sandboxID SandboxID, body RefreshSandboxJSONRequestBody, editors ...RequestEditorFn) (*RefreshSandboxResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/refreshes", nil, body, editors)
	if err != nil {
		return nil, err
	}
	return &RefreshSandboxResponse{HTTPResponse: rsp, Body: data}, nil
}

// GetSandboxMetricsWithResponse 获取沙箱资源指标。
func (c *Client) GetSandboxMetricsWithResponse(ctx context.Context, sandboxID SandboxID, params *GetSandboxMetricsParams, editors ...RequestEditorFn) (*GetSandboxMetricsResponse, error) {
	q := url.Values{}
	if params != nil {
		if params.Start != nil {
			if err := addQueryParam(q, "start", *params.Start); err != nil {
				return nil, err
			}
		}
		if params.End != nil {
			if err := addQueryParam(q, "end", *params.End); err != nil {
				return nil, err
			}
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/sandboxes/"+url.PathEscape(sandboxID)+"/metrics", q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetSandboxMetricsResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[[]SandboxMetric](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetSandboxLogsWithResponse 获取沙箱日志。
func (c *Client) GetSandboxLogsWithResponse(ctx context.Context, sandboxID SandboxID, params *GetSandboxLogsParams, editors ...RequestEditorFn) (*GetSandboxLogsResponse, error) {
	q := url.Values{}
	if params != nil {
		if params.Start != nil {
			if err := addQueryParam(q, "start", *params.Start); err != nil {
				return nil, err
			}
		}
		if params.Limit != nil {
			if err := addQueryParam(q, "limit", *params.Limit); err != nil {
				return nil, err
			}
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/sandboxes/"+url.PathEscape(sandboxID)+"/logs", q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetSandboxLogsResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[SandboxLogs](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetSandboxesMetricsWithResponse 批量获取沙箱指标。
func (c *Client) GetSandboxesMetricsWithResponse(ctx context.Context, params *GetSandboxesMetricsParams, editors ...RequestEditorFn) (*GetSandboxesMetricsResponse, error) {
	q := url.Values{}
	if params != nil && len(params.SandboxIDs) > 0 {
		if err := addQueryParam(q, "sandbox_ids", params.SandboxIDs); err != nil {
			return nil, err
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/sandboxes/metrics", q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetSandboxesMetricsResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[SandboxesWithMetrics](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// 模板操作
// ---------------------------------------------------------------------------

// ListTemplatesWithResponse 列出模板。
func (c *Client) ListTemplatesWithResponse(ctx context.Context, params *ListTemplatesParams, editors ...RequestEditorFn) (*ListTemplatesResponse, error) {
	q := url.Values{}
	if params != nil && params.TeamID != nil {
		if err := addQueryParam(q, "teamID", *params.TeamID); err != nil {
			return nil, err
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/templates", q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &ListTemplatesResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[[]Template](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CreateTemplateWithResponse 创建模板。
func (c *Client) CreateTemplateWithResponse(ctx context.Context, body CreateTemplateJSONRequestBody, editors ...RequestEditorFn) (*CreateTemplateResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/v3/templates", nil, body, editors)
	if err != nil {
		return nil, err
	}
	out := &CreateTemplateResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusAccepted {
		if out.JSON202, err = decodeInto[TemplateRequestResponse](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetTemplateWithResponse 获取模板详情及其构建记录。
func (c *Client) GetTemplateWithResponse(ctx context.Context, templateID TemplateID, params *GetTemplateParams, editors ...RequestEditorFn) (*GetTemplateResponse, error) {
	q := url.Values{}
	if params != nil && params.BuildID != nil {
		if err := addQueryParam(q, "buildID", *params.BuildID); err != nil {
			return nil, err
		}
	}
	rsp, data, err := c.do(ctx, http.MethodGet, "/templates/"+url.PathEscape(templateID), q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetTemplateResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[TemplateWithBuilds](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteTemplateWithResponse 删除模板。
func (c *Client) DeleteTemplateWithResponse(ctx context.Context, templateID TemplateID, editors ...RequestEditorFn) (*DeleteTemplateResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodDelete, "/templates/"+url.PathEscape(templateID), nil, nil, editors)
	if err != nil {
		return nil, err
	}
	return &DeleteTemplateResponse{HTTPResponse: rsp, Body: data}, nil
}

// UpdateTemplateWithResponse 更新模板。
func (c *Client) UpdateTemplateWithResponse(ctx context.Context, templateID TemplateID, body UpdateTemplateJSONRequestBody, editors ...RequestEditorFn) (*UpdateTemplateResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPatch, "/templates/"+url.PathEscape(templateID), nil, body, editors)
	if err != nil {
		return nil, err
	}
	return &UpdateTemplateResponse{HTTPResponse: rsp, Body: data}, nil
}

// GetTemplateBuildStatusWithResponse 获取模板构建状态。
func (c *Client) GetTemplateBuildStatusWithResponse(ctx context.Context, templateID TemplateID, buildID BuildID, params *GetTemplateBuildStatusParams, editors ...RequestEditorFn) (*GetTemplateBuildStatusResponse, error) {
	q := url.Values{}
	if params != nil && params.LogsOffset != nil {
		if err := addQueryParam(q, "logsOffset", *params.LogsOffset); err != nil {
			return nil, err
		}
	}
	path := "/templates/" + url.PathEscape(templateID) + "/builds/" + url.PathEscape(buildID) + "/status"
	rsp, data, err := c.do(ctx, http.MethodGet, path, q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetTemplateBuildStatusResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[TemplateBuildInfo](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetTemplateBuildLogsWithResponse 获取模板构建日志。
func (c *Client) GetTemplateBuildLogsWithResponse(ctx context.Context, templateID TemplateID, buildID BuildID, params *GetTemplateBuildLogsParams, editors ...RequestEditorFn) (*GetTemplateBuildLogsResponse, error) {
	q := url.Values{}
	if params != nil {
		if params.Offset != nil {
			if err := addQueryParam(q, "offset", *params.Offset); err != nil {
				return nil, err
			}
		}
		if params.Level != nil {
			if err := addQueryParam(q, "level", *params.Level); err != nil {
				return nil, err
			}
		}
	}
	path := "/templates/" + url.PathEscape(templateID) + "/builds/" + url.PathEscape(buildID) + "/logs"
	rsp, data, err := c.do(ctx, http.MethodGet, path, q, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetTemplateBuildLogsResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[TemplateBuildLogsResponse](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StartTemplateBuildWithResponse 启动模板构建。
func (c *Client) StartTemplateBuildWithResponse(ctx context.Context, templateID TemplateID, buildID BuildID, body StartTemplateBuildJSONRequestBody, editors ...RequestEditorFn) (*StartTemplateBuildResponse, error) {
	path := "/v2/templates/" + url.PathEscape(templateID) + "/builds/" + url.PathEscape(buildID)
	rsp, data, err := c.do(ctx, http.MethodPost, path, nil, body, editors)
	if err != nil {
		return nil, err
	}
	return &StartTemplateBuildResponse{HTTPResponse: rsp, Body: data}, nil
}

// GetTemplateFilesWithResponse 获取模板构建文件的上传链接。
func (c *Client) GetTemplateFilesWithResponse(ctx context.Context, templateID TemplateID, hash string, editors ...RequestEditorFn) (*GetTemplateFilesResponse, error) {
	path := "/templates/" + url.PathEscape(templateID) + "/files/" + url.PathEscape(hash)
	rsp, data, err := c.do(ctx, http.MethodGet, path, nil, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetTemplateFilesResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusCreated {
		if out.JSON201, err = decodeInto[TemplateBuildFileUpload](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetTemplateByAliasWithResponse 按别名查询模板。
func (c *Client) GetTemplateByAliasWithResponse(ctx context.Context, alias string, editors ...RequestEditorFn) (*GetTemplateByAliasResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodGet, "/templates/alias/"+url.PathEscape(alias), nil, nil, editors)
	if err != nil {
		return nil, err
	}
	out := &GetTemplateByAliasResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusOK {
		if out.JSON200, err = decodeInto[TemplateAliasResponse](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ManageTemplateTagsWithResponse 为模板构建分配标签。
func (c *Client) ManageTemplateTagsWithResponse(ctx context.Context, body ManageTemplateTagsJSONRequestBody, editors ...RequestEditorFn) (*ManageTemplateTagsResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodPost, "/templates/tags", nil, body, editors)
	if err != nil {
		return nil, err
	}
	out := &ManageTemplateTagsResponse{HTTPResponse: rsp, Body: data}
	if rsp.StatusCode == http.StatusCreated {
		if out.JSON201, err = decodeInto[AssignedTemplateTags](data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteTemplateTagsWithResponse 删除模板标签。
func (c *Client) DeleteTemplateTagsWithResponse(ctx context.Context, body DeleteTemplateTagsJSONRequestBody, editors ...RequestEditorFn) (*DeleteTemplateTagsResponse, error) {
	rsp, data, err := c.do(ctx, http.MethodDelete, "/templates/tags", nil, body, editors)
	if err != nil {
		return nil, err
	}
	return &DeleteTemplateTagsResponse{HTTPResponse: rsp, Body: data}, nil
}
