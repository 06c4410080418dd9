package sandbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/qiniu/sandbox-go/apis"
)

// ---------------------------------------------------------------------------
// mockAPI — apis.ClientWithResponsesInterface 的测试替身
// ---------------------------------------------------------------------------

type mockAPI struct {
	healthCheckFn            func(ctx context.Context) (*apis.HealthCheckResponse, error)
	createSandboxFn          func(ctx context.Context, body apis.CreateSandboxJSONRequestBody) (*apis.CreateSandboxResponse, error)
	getSandboxFn             func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error)
	deleteSandboxFn          func(ctx context.Context, sandboxID apis.SandboxID) (*apis.DeleteSandboxResponse, error)
	listSandboxesFn          func(ctx context.Context, params *apis.ListSandboxesParams) (*apis.ListSandboxesResponse, error)
	listSandboxesV2Fn        func(ctx context.Context, params *apis.ListSandboxesV2Params) (*apis.ListSandboxesV2Response, error)
	connectSandboxFn         func(ctx context.Context, sandboxID apis.SandboxID, body apis.ConnectSandboxJSONRequestBody) (*apis.ConnectSandboxResponse, error)
	updateSandboxTimeoutFn   func(ctx context.Context, sandboxID apis.SandboxID, body apis.UpdateSandboxTimeoutJSONRequestBody) (*apis.UpdateSandboxTimeoutResponse, error)
	pauseSandboxFn           func(ctx context.Context, sandboxID apis.SandboxID) (*apis.PauseSandboxResponse, error)
	refreshSandboxFn         func(ctx context.Context, sandboxID apis.SandboxID, body apis.RefreshSandboxJSONRequestBody) (*apis.RefreshSandboxResponse, error)
	getSandboxMetricsFn      func(ctx context.Context, sandboxID apis.SandboxID, params *apis.GetSandboxMetricsParams) (*apis.GetSandboxMetricsResponse, error)
	getSandboxLogsFn         func(ctx context.Context, sandboxID apis.SandboxID, params *apis.GetSandboxLogsParams) (*apis.GetSandboxLogsResponse, error)
	getSandboxesMetricsFn    func(ctx context.Context, params *apis.GetSandboxesMetricsParams) (*apis.GetSandboxesMetricsResponse, error)
	listTemplatesFn          func(ctx context.Context, params *apis.ListTemplatesParams) (*apis.ListTemplatesResponse, error)
	createTemplateFn         func(ctx context.Context, body apis.CreateTemplateJSONRequestBody) (*apis.CreateTemplateResponse, error)
	getTemplateFn            func(ctx context.Context, templateID apis.TemplateID, params *apis.GetTemplateParams) (*apis.GetTemplateResponse, error)
	deleteTemplateFn         func(ctx context.Context, templateID apis.TemplateID) (*apis.DeleteTemplateResponse, error)
	updateTemplateFn         func(ctx context.Context, templateID apis.TemplateID, body apis.UpdateTemplateJSONRequestBody) (*apis.UpdateTemplateResponse, error)
	getBuildStatusFn         func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams) (*apis.GetTemplateBuildStatusResponse, error)
	getBuildLogsFn           func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildLogsParams) (*apis.GetTemplateBuildLogsResponse, error)
	startTemplateBuildFn     func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, body apis.StartTemplateBuildJSONRequestBody) (*apis.StartTemplateBuildResponse, error)
	getTemplateFilesFn       func(ctx context.Context, templateID apis.TemplateID, hash string) (*apis.GetTemplateFilesResponse, error)
	getTemplateByAliasFn     func(ctx context.Context, alias string) (*apis.GetTemplateByAliasResponse, error)
	manageTemplateTagsFn     func(ctx context.Context, body apis.ManageTemplateTagsJSONRequestBody) (*apis.ManageTemplateTagsResponse, error)
	deleteTemplateTagsFn     func(ctx context.Context, body apis.DeleteTemplateTagsJSONRequestBody) (*apis.DeleteTemplateTagsResponse, error)
}

var _ apis.ClientWithResponsesInterface = (*mockAPI)(nil)

func (m *mockAPI) HealthCheckWithResponse(ctx context.Context, _ ...apis.RequestEditorFn) (*apis.HealthCheckResponse, error) {
	if m.healthCheckFn == nil {
		panic("unexpected call: HealthCheck")
	}
	return m.healthCheckFn(ctx)
}

func (m *mockAPI) CreateSandboxWithResponse(ctx context.Context, body apis.CreateSandboxJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.CreateSandboxResponse, error) {
	if m.createSandboxFn == nil {
		panic("unexpected call: CreateSandbox")
	}
	return m.createSandboxFn(ctx, body)
}

func (m *mockAPI) GetSandboxWithResponse(ctx context.Context, sandboxID apis.SandboxID, _ ...apis.RequestEditorFn) (*apis.GetSandboxResponse, error) {
	if m.getSandboxFn == nil {
		panic("unexpected call: GetSandbox")
	}
	return m.getSandboxFn(ctx, sandboxID)
}

func (m *mockAPI) DeleteSandboxWithResponse(ctx context.Context, sandboxID apis.SandboxID, _ ...apis.RequestEditorFn) (*apis.DeleteSandboxResponse, error) {
	if m.deleteSandboxFn == nil {
		panic("unexpected call: DeleteSandbox")
	}
	return m.deleteSandboxFn(ctx, sandboxID)
}

func (m *mockAPI) ListSandboxesWithResponse(ctx context.Context, params *apis.ListSandboxesParams, _ ...apis.RequestEditorFn) (*apis.ListSandboxesResponse, error) {
	if m.listSandboxesFn == nil {
		panic("unexpected call: ListSandboxes")
	}
	return m.listSandboxesFn(ctx, params)
}

func (m *mockAPI) ListSandboxesV2WithResponse(ctx context.Context, params *apis.ListSandboxesV2Params, _ ...apis.RequestEditorFn) (*apis.ListSandboxesV2Response, error) {
	if m.listSandboxesV2Fn == nil {
		panic("unexpected call: ListSandboxesV2")
	}
	return m.listSandboxesV2Fn(ctx, params)
}

func (m *mockAPI) ConnectSandboxWithResponse(ctx context.Context, sandboxID apis.SandboxID, body apis.ConnectSandboxJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.ConnectSandboxResponse, error) {
	if m.connectSandboxFn == nil {
		panic("unexpected call: ConnectSandbox")
	}
	return m.connectSandboxFn(ctx, sandboxID, body)
}

func (m *mockAPI) UpdateSandboxTimeoutWithResponse(ctx context.Context, sandboxID apis.SandboxID, body apis.UpdateSandboxTimeoutJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.UpdateSandboxTimeoutResponse, error) {
	if m.updateSandboxTimeoutFn == nil {
		panic("unexpected call: UpdateSandboxTimeout")
	}
	return m.updateSandboxTimeoutFn(ctx, sandboxID, body)
}

func (m *mockAPI) PauseSandboxWithResponse(ctx context.Context, sandboxID apis.SandboxID, _ ...apis.RequestEditorFn) (*apis.PauseSandboxResponse, error) {
	if m.pauseSandboxFn == nil {
		panic("unexpected call: PauseSandbox")
	}
	return m.pauseSandboxFn(ctx, sandboxID)
}

func (m *mockAPI) RefreshSandboxWithResponse(ctx context.Context, sandboxID apis.SandboxID, body apis.RefreshSandboxJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.RefreshSandboxResponse, error) {
	if m.refreshSandboxFn == nil {
		panic("unexpected call: RefreshSandbox")
	}
	return m.refreshSandboxFn(ctx, sandboxID, body)
}

func (m *mockAPI) GetSandboxMetricsWithResponse(ctx context.Context, sandboxID apis.SandboxID, params *apis.GetSandboxMetricsParams, _ ...apis.RequestEditorFn) (*apis.GetSandboxMetricsResponse, error) {
	if m.getSandboxMetricsFn == nil {
		panic("unexpected call: GetSandboxMetrics")
	}
	return m.getSandboxMetricsFn(ctx, sandboxID, params)
}

func (m *mockAPI) GetSandboxLogsWithResponse(ctx context.Context, sandboxID apis.SandboxID, params *apis.GetSandboxLogsParams, _ ...apis.RequestEditorFn) (*apis.GetSandboxLogsResponse, error) {
	if m.getSandboxLogsFn == nil {
		panic("unexpected call: GetSandboxLogs")
	}
	return m.getSandboxLogsFn(ctx, sandboxID, params)
}

func (m *mockAPI) GetSandboxesMetricsWithResponse(ctx context.Context, params *apis.GetSandboxesMetricsParams, _ ...apis.RequestEditorFn) (*apis.GetSandboxesMetricsResponse, error) {
	if m.getSandboxesMetricsFn == nil {
		panic("unexpected call: GetSandboxesMetrics")
	}
	return m.getSandboxesMetricsFn(ctx, params)
}

func (m *mockAPI) ListTemplatesWithResponse(ctx context.Context, params *apis.ListTemplatesParams, _ ...apis.RequestEditorFn) (*apis.ListTemplatesResponse, error) {
	if m.listTemplatesFn == nil {
		panic("unexpected call: ListTemplates")
	}
	return m.listTemplatesFn(ctx, params)
}

func (m *mockAPI) CreateTemplateWithResponse(ctx context.Context, body apis.CreateTemplateJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.CreateTemplateResponse, error) {
	if m.createTemplateFn == nil {
		panic("unexpected call: CreateTemplate")
	}
	return m.createTemplateFn(ctx, body)
}

func (m *mockAPI) GetTemplateWithResponse(ctx context.Context, templateID apis.TemplateID, params *apis.GetTemplateParams, _ ...apis.RequestEditorFn) (*apis.GetTemplateResponse, error) {
	if m.getTemplateFn == nil {
		panic("unexpected call: GetTemplate")
	}
	return m.getTemplateFn(ctx, templateID, params)
}

func (m *mockAPI) DeleteTemplateWithResponse(ctx context.Context, templateID apis.TemplateID, _ ...apis.RequestEditorFn) (*apis.DeleteTemplateResponse, error) {
	if m.deleteTemplateFn == nil {
		panic("unexpected call: DeleteTemplate")
	}
	return m.deleteTemplateFn(ctx, templateID)
}

func (m *mockAPI) UpdateTemplateWithResponse(ctx context.Context, templateID apis.TemplateID, body apis.UpdateTemplateJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.UpdateTemplateResponse, error) {
	if m.updateTemplateFn == nil {
		panic("unexpected call: UpdateTemplate")
	}
	return m.updateTemplateFn(ctx, templateID, body)
}

func (m *mockAPI) GetTemplateBuildStatusWithResponse(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams, _ ...apis.RequestEditorFn) (*apis.GetTemplateBuildStatusResponse, error) {
	if m.getBuildStatusFn == nil {
		panic("unexpected call: GetTemplateBuildStatus")
	}
	return m.getBuildStatusFn(ctx, templateID, buildID, params)
}

func (m *mockAPI) GetTemplateBuildLogsWithResponse(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildLogsParams, _ ...apis.RequestEditorFn) (*apis.GetTemplateBuildLogsResponse, error) {
	if m.getBuildLogsFn == nil {
		panic("unexpected call: GetTemplateBuildLogs")
	}
	return m.getBuildLogsFn(ctx, templateID, buildID, params)
}

func (m *mockAPI) StartTemplateBuildWithResponse(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, body apis.StartTemplateBuildJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.StartTemplateBuildResponse, error) {
	if m.startTemplateBuildFn == nil {
		panic("unexpected call: StartTemplateBuild")
	}
	return m.startTemplateBuildFn(ctx, templateID, buildID, body)
}

func (m *mockAPI) GetTemplateFilesWithResponse(ctx context.Context, templateID apis.TemplateID, hash string, _ ...apis.RequestEditorFn) (*apis.GetTemplateFilesResponse, error) {
	if m.getTemplateFilesFn == nil {
		panic("unexpected call: GetTemplateFiles")
	}
	return m.getTemplateFilesFn(ctx, templateID, hash)
}

func (m *mockAPI) GetTemplateByAliasWithResponse(ctx context.Context, alias string, _ ...apis.RequestEditorFn) (*apis.GetTemplateByAliasResponse, error) {
	if m.getTemplateByAliasFn == nil {
		panic("unexpected call: GetTemplateByAlias")
	}
	return m.getTemplateByAliasFn(ctx, alias)
}

func (m *mockAPI) ManageTemplateTagsWithResponse(ctx context.Context, body apis.ManageTemplateTagsJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.ManageTemplateTagsResponse, error) {
	if m.manageTemplateTagsFn == nil {
		panic("unexpected call: ManageTemplateTags")
	}
	return m.manageTemplateTagsFn(ctx, body)
}

func (m *mockAPI) DeleteTemplateTagsWithResponse(ctx context.Context, body apis.DeleteTemplateTagsJSONRequestBody, _ ...apis.RequestEditorFn) (*apis.DeleteTemplateTagsResponse, error) {
	if m.deleteTemplateTagsFn == nil {
		panic("unexpected call: DeleteTemplateTags")
	}
	return m.deleteTemplateTagsFn(ctx, body)
}

// ---------------------------------------------------------------------------
// 测试辅助
// ---------------------------------------------------------------------------

func ptr[T any](v T) *T { return &v }

func httpResponse(statusCode int) *http.Response {
	return &http.Response{StatusCode: statusCode}
}

func newTestClient(api apis.ClientWithResponsesInterface) *Client {
	return &Client{
		config: &Config{APIKey: "test-key", Domain: "test.dev"},
		api:    api,
		logger: slog.Default(),
	}
}

func newTestSandbox(api apis.ClientWithResponsesInterface) *Sandbox {
	return newSandbox(newTestClient(api), &apis.Sandbox{
		SandboxID:  "sbx-1",
		TemplateID: "tpl-1",
		ClientID:   "client-1",
	})
}

// captureTransport 记录最后一次请求并返回固定状态码。
type captureTransport struct {
	lastReq *http.Request
	status  int
}

func (ct *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ct.lastReq = req
	return &http.Response{
		StatusCode: ct.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("{}")),
	}, nil
}

// =========================================================================
// 客户端构造
// =========================================================================

func TestNewClient(t *testing.T) {
	c, err := NewClient(&Config{APIKey: "key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.API() == nil {
		t.Fatal("API() returned nil")
	}
}

func TestNewClientDefaultEndpoint(t *testing.T) {
	ct := &captureTransport{status: 200}
	c, err := NewClient(&Config{APIKey: "key", HTTPClient: &http.Client{Transport: ct}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	want := strings.TrimPrefix(DefaultEndpoint, "https://")
	if ct.lastReq.URL.Host != want {
		t.Errorf("request host = %q, want %q", ct.lastReq.URL.Host, want)
	}
	if ct.lastReq.URL.Path != "/health" {
		t.Errorf("request path = %q, want /health", ct.lastReq.URL.Path)
	}
}

func TestNewClientCustomEndpoint(t *testing.T) {
	ct := &captureTransport{status: 200}
	c, err := NewClient(&Config{
		APIKey:     "key",
		Endpoint:   "https://sandbox.example.com",
		HTTPClient: &http.Client{Transport: ct},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if ct.lastReq.URL.Host != "sandbox.example.com" {
		t.Errorf("request host = %q, want sandbox.example.com", ct.lastReq.URL.Host)
	}
}

func TestAPIKeyEditor(t *testing.T) {
	ct := &captureTransport{status: 200}
	c, err := NewClient(&Config{APIKey: "secret-key", HTTPClient: &http.Client{Transport: ct}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if got := ct.lastReq.Header.Get("X-API-Key"); got != "secret-key" {
		t.Errorf("X-API-Key = %q, want secret-key", got)
	}
}

// =========================================================================
// 沙箱生命周期
// =========================================================================

func TestCreate(t *testing.T) {
	var gotBody apis.CreateSandboxJSONRequestBody
	api := &mockAPI{
		createSandboxFn: func(ctx context.Context, body apis.CreateSandboxJSONRequestBody) (*apis.CreateSandboxResponse, error) {
			gotBody = body
			return &apis.CreateSandboxResponse{
				HTTPResponse: httpResponse(201),
				JSON201: &apis.Sandbox{
					SandboxID:  "sbx-42",
					TemplateID: "tpl-base",
					ClientID:   "client-1",
				},
			}, nil
		},
	}
	c := newTestClient(api)

	sb, err := c.Create(context.Background(), CreateParams{
		TemplateID: "tpl-base",
		Timeout:    ptr(int32(300)),
		Metadata:   &Metadata{"app": "demo"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sb.ID() != "sbx-42" {
		t.Errorf("ID = %q, want sbx-42", sb.ID())
	}
	if sb.TemplateID() != "tpl-base" {
		t.Errorf("TemplateID = %q, want tpl-base", sb.TemplateID())
	}
	if gotBody.TemplateID != "tpl-base" {
		t.Errorf("request templateID = %q, want tpl-base", gotBody.TemplateID)
	}
	if gotBody.Timeout == nil || *gotBody.Timeout != 300 {
		t.Errorf("request timeout = %v, want 300", gotBody.Timeout)
	}
	if gotBody.Metadata == nil || (*gotBody.Metadata)["app"] != "demo" {
		t.Errorf("request metadata = %v, want app=demo", gotBody.Metadata)
	}
}

func TestCreateError(t *testing.T) {
	api := &mockAPI{
		createSandboxFn: func(ctx context.Context, body apis.CreateSandboxJSONRequestBody) (*apis.CreateSandboxResponse, error) {
			return &apis.CreateSandboxResponse{
				HTTPResponse: httpResponse(400),
				Body:         []byte(`{"message":"invalid template"}`),
			}, nil
		},
	}
	c := newTestClient(api)

	_, err := c.Create(context.Background(), CreateParams{TemplateID: "bad"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid template" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "invalid template")
	}
}

func TestConnect(t *testing.T) {
	var gotID string
	var gotTimeout int32
	api := &mockAPI{
		connectSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID, body apis.ConnectSandboxJSONRequestBody) (*apis.ConnectSandboxResponse, error) {
			gotID = sandboxID
			gotTimeout = body.Timeout
			return &apis.ConnectSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.Sandbox{SandboxID: sandboxID, TemplateID: "tpl-1", ClientID: "c1"},
			}, nil
		},
	}
	c := newTestClient(api)

	sb, err := c.Connect(context.Background(), "sbx-7", ConnectParams{Timeout: 600})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if sb.ID() != "sbx-7" || gotID != "sbx-7" {
		t.Errorf("sandboxID = %q/%q, want sbx-7", sb.ID(), gotID)
	}
	if gotTimeout != 600 {
		t.Errorf("timeout = %d, want 600", gotTimeout)
	}
}

func TestConnectResumed(t *testing.T) {
	// 已暂停的沙箱恢复时服务端返回 201。
	api := &mockAPI{
		connectSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID, body apis.ConnectSandboxJSONRequestBody) (*apis.ConnectSandboxResponse, error) {
			return &apis.ConnectSandboxResponse{
				HTTPResponse: httpResponse(201),
				JSON201:      &apis.Sandbox{SandboxID: sandboxID, TemplateID: "tpl-1", ClientID: "c1"},
			}, nil
		},
	}
	c := newTestClient(api)

	sb, err := c.Connect(context.Background(), "sbx-paused", ConnectParams{Timeout: 60})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if sb.ID() != "sbx-paused" {
		t.Errorf("ID = %q, want sbx-paused", sb.ID())
	}
}

func TestConnectError(t *testing.T) {
	api := &mockAPI{
		connectSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID, body apis.ConnectSandboxJSONRequestBody) (*apis.ConnectSandboxResponse, error) {
			return &apis.ConnectSandboxResponse{
				HTTPResponse: httpResponse(404),
				Body:         []byte(`{"message":"sandbox not found"}`),
			}, nil
		},
	}
	c := newTestClient(api)

	_, err := c.Connect(context.Background(), "sbx-missing", ConnectParams{Timeout: 60})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestList(t *testing.T) {
	api := &mockAPI{
		listSandboxesFn: func(ctx context.Context, params *apis.ListSandboxesParams) (*apis.ListSandboxesResponse, error) {
			if params == nil || params.Metadata == nil || *params.Metadata != "app=demo" {
				t.Errorf("metadata filter = %v, want app=demo", params)
			}
			return &apis.ListSandboxesResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &[]apis.ListedSandbox{
					{SandboxID: "sbx-1", TemplateID: "tpl-1", State: apis.Running, CPUCount: 2},
					{SandboxID: "sbx-2", TemplateID: "tpl-2", State: apis.Paused, CPUCount: 4},
				},
			}, nil
		},
	}
	c := newTestClient(api)

	sandboxes, err := c.List(context.Background(), &ListParams{Metadata: ptr("app=demo")})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sandboxes) != 2 {
		t.Fatalf("len = %d, want 2", len(sandboxes))
	}
	if sandboxes[0].SandboxID != "sbx-1" || sandboxes[0].State != StateRunning {
		t.Errorf("sandboxes[0] = %+v", sandboxes[0])
	}
	if sandboxes[1].State != StatePaused || sandboxes[1].CPUCount != 4 {
		t.Errorf("sandboxes[1] = %+v", sandboxes[1])
	}
}

func TestListV2(t *testing.T) {
	api := &mockAPI{
		listSandboxesV2Fn: func(ctx context.Context, params *apis.ListSandboxesV2Params) (*apis.ListSandboxesV2Response, error) {
			if params.NextToken == nil || *params.NextToken != "tok-1" {
				t.Errorf("nextToken = %v, want tok-1", params.NextToken)
			}
			if params.State == nil || len(*params.State) != 1 || (*params.State)[0] != apis.Running {
				t.Errorf("state filter = %v, want [running]", params.State)
			}
			return &apis.ListSandboxesV2Response{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.SandboxListPage{
					Sandboxes: []apis.ListedSandbox{
						{SandboxID: "sbx-3", State: apis.Running},
					},
					NextToken: ptr("tok-2"),
				},
			}, nil
		},
	}
	c := newTestClient(api)

	page, err := c.ListV2(context.Background(), &ListV2Params{
		NextToken: ptr("tok-1"),
		State:     &[]SandboxState{StateRunning},
		Limit:     ptr(int32(10)),
	})
	if err != nil {
		t.Fatalf("ListV2: %v", err)
	}
	if len(page.Sandboxes) != 1 || page.Sandboxes[0].SandboxID != "sbx-3" {
		t.Errorf("page.Sandboxes = %+v", page.Sandboxes)
	}
	if page.NextToken == nil || *page.NextToken != "tok-2" {
		t.Errorf("NextToken = %v, want tok-2", page.NextToken)
	}
}

func TestKill(t *testing.T) {
	var gotID string
	api := &mockAPI{
		deleteSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.DeleteSandboxResponse, error) {
			gotID = sandboxID
			return &apis.DeleteSandboxResponse{HTTPResponse: httpResponse(204)}, nil
		},
	}
	sb := newTestSandbox(api)

	if err := sb.Kill(context.Background()); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if gotID != "sbx-1" {
		t.Errorf("sandboxID = %q, want sbx-1", gotID)
	}
}

func TestKillError(t *testing.T) {
	api := &mockAPI{
		deleteSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.DeleteSandboxResponse, error) {
			return &apis.DeleteSandboxResponse{
				HTTPResponse: httpResponse(404),
				Body:         []byte(`{"message":"not found"}`),
			}, nil
		},
	}
	sb := newTestSandbox(api)

	err := sb.Kill(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestSetTimeout(t *testing.T) {
	var gotTimeout int32
	api := &mockAPI{
		updateSandboxTimeoutFn: func(ctx context.Context, sandboxID apis.SandboxID, body apis.UpdateSandboxTimeoutJSONRequestBody) (*apis.UpdateSandboxTimeoutResponse, error) {
			gotTimeout = body.Timeout
			return &apis.UpdateSandboxTimeoutResponse{HTTPResponse: httpResponse(204)}, nil
		},
	}
	sb := newTestSandbox(api)

	if err := sb.SetTimeout(context.Background(), 2*time.Minute); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}
	if gotTimeout != 120 {
		t.Errorf("timeout = %d, want 120", gotTimeout)
	}
}

func TestSetTimeoutTooShort(t *testing.T) {
	// 小于 1 秒直接拒绝，不发请求。
	sb := newTestSandbox(&mockAPI{})

	if err := sb.SetTimeout(context.Background(), 500*time.Millisecond); err == nil {
		t.Fatal("expected error for sub-second timeout")
	}
}

func TestSetTimeoutError(t *testing.T) {
	api := &mockAPI{
		updateSandboxTimeoutFn: func(ctx context.Context, sandboxID apis.SandboxID, body apis.UpdateSandboxTimeoutJSONRequestBody) (*apis.UpdateSandboxTimeoutResponse, error) {
			return &apis.UpdateSandboxTimeoutResponse{
				HTTPResponse: httpResponse(500),
				Body:         []byte("internal error"),
			}, nil
		},
	}
	sb := newTestSandbox(api)

	err := sb.SetTimeout(context.Background(), time.Minute)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
}

func TestGetInfo(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.SandboxDetail{
					SandboxID:  sandboxID,
					TemplateID: "tpl-1",
					ClientID:   "c1",
					State:      apis.Running,
					CPUCount:   2,
					MemoryMB:   1024,
					StartedAt:  started,
					Metadata:   &apis.SandboxMetadata{"app": "demo"},
				},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	info, err := sb.GetInfo(context.Background())
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.SandboxID != "sbx-1" || info.State != StateRunning {
		t.Errorf("info = %+v", info)
	}
	if info.CPUCount != 2 || info.MemoryMB != 1024 {
		t.Errorf("resources = %d cpu / %d MB", info.CPUCount, info.MemoryMB)
	}
	if !info.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", info.StartedAt, started)
	}
	if info.Metadata == nil || (*info.Metadata)["app"] != "demo" {
		t.Errorf("Metadata = %v", info.Metadata)
	}
}

func TestGetInfoError(t *testing.T) {
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(404),
				Body:         []byte(`{"message":"not found"}`),
			}, nil
		},
	}
	sb := newTestSandbox(api)

	if _, err := sb.GetInfo(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsRunning(t *testing.T) {
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: apis.Running},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	running, err := sb.IsRunning(context.Background())
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if !running {
		t.Error("IsRunning = false, want true")
	}
}

func TestIsRunningPaused(t *testing.T) {
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: apis.Paused},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	running, err := sb.IsRunning(context.Background())
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if running {
		t.Error("IsRunning = true, want false")
	}
}

func TestPause(t *testing.T) {
	var gotID string
	api := &mockAPI{
		pauseSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.PauseSandboxResponse, error) {
			gotID = sandboxID
			return &apis.PauseSandboxResponse{HTTPResponse: httpResponse(204)}, nil
		},
	}
	sb := newTestSandbox(api)

	if err := sb.Pause(context.Background()); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if gotID != "sbx-1" {
		t.Errorf("sandboxID = %q, want sbx-1", gotID)
	}
}

func TestPauseError(t *testing.T) {
	api := &mockAPI{
		pauseSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.PauseSandboxResponse, error) {
			return &apis.PauseSandboxResponse{
				HTTPResponse: httpResponse(409),
				Body:         []byte(`{"message":"already paused"}`),
			}, nil
		},
	}
	sb := newTestSandbox(api)

	if err := sb.Pause(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRefresh(t *testing.T) {
	var gotDuration *int
	api := &mockAPI{
		refreshSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID, body apis.RefreshSandboxJSONRequestBody) (*apis.RefreshSandboxResponse, error) {
			gotDuration = body.Duration
			return &apis.RefreshSandboxResponse{HTTPResponse: httpResponse(204)}, nil
		},
	}
	sb := newTestSandbox(api)

	if err := sb.Refresh(context.Background(), RefreshParams{Duration: ptr(600)}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if gotDuration == nil || *gotDuration != 600 {
		t.Errorf("duration = %v, want 600", gotDuration)
	}
}

func TestGetMetrics(t *testing.T) {
	api := &mockAPI{
		getSandboxMetricsFn: func(ctx context.Context, sandboxID apis.SandboxID, params *apis.GetSandboxMetricsParams) (*apis.GetSandboxMetricsResponse, error) {
			return &apis.GetSandboxMetricsResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &[]apis.SandboxMetric{
					{CPUCount: 2, CPUUsedPct: 42.5, MemTotal: 2048, MemUsed: 512},
				},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	metrics, err := sb.GetMetrics(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetMetrics: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("len = %d, want 1", len(metrics))
	}
	if metrics[0].CPUUsedPct != 42.5 || metrics[0].MemUsed != 512 {
		t.Errorf("metrics[0] = %+v", metrics[0])
	}
}

func TestGetLogs(t *testing.T) {
	api := &mockAPI{
		getSandboxLogsFn: func(ctx context.Context, sandboxID apis.SandboxID, params *apis.GetSandboxLogsParams) (*apis.GetSandboxLogsResponse, error) {
			if params == nil || params.Limit == nil || *params.Limit != 100 {
				t.Errorf("limit = %v, want 100", params)
			}
			return &apis.GetSandboxLogsResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.SandboxLogs{
					Logs: []apis.SandboxLog{{Line: "hello"}},
					LogEntries: []apis.SandboxLogEntry{
						{Level: "info", Message: "booted"},
					},
				},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	logs, err := sb.GetLogs(context.Background(), &GetLogsParams{Limit: ptr(int32(100))})
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if len(logs.Logs) != 1 || logs.Logs[0].Line != "hello" {
		t.Errorf("Logs = %+v", logs.Logs)
	}
	if len(logs.LogEntries) != 1 || logs.LogEntries[0].Message != "booted" {
		t.Errorf("LogEntries = %+v", logs.LogEntries)
	}
}

func TestGetSandboxesMetrics(t *testing.T) {
	api := &mockAPI{
		getSandboxesMetricsFn: func(ctx context.Context, params *apis.GetSandboxesMetricsParams) (*apis.GetSandboxesMetricsResponse, error) {
			if len(params.SandboxIDs) != 2 || params.SandboxIDs[0] != "sbx-1" {
				t.Errorf("SandboxIDs = %v", params.SandboxIDs)
			}
			return &apis.GetSandboxesMetricsResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.SandboxesWithMetrics{
					Sandboxes: map[string]apis.SandboxMetric{
						"sbx-1": {CPUCount: 2},
						"sbx-2": {CPUCount: 4},
					},
				},
			}, nil
		},
	}
	c := newTestClient(api)

	m, err := c.GetSandboxesMetrics(context.Background(), &GetSandboxesMetricsParams{
		SandboxIDs: []string{"sbx-1", "sbx-2"},
	})
	if err != nil {
		t.Fatalf("GetSandboxesMetrics: %v", err)
	}
	if len(m.Sandboxes) != 2 || m.Sandboxes["sbx-2"].CPUCount != 4 {
		t.Errorf("Sandboxes = %+v", m.Sandboxes)
	}
}

func TestHealthCheck(t *testing.T) {
	api := &mockAPI{
		healthCheckFn: func(ctx context.Context) (*apis.HealthCheckResponse, error) {
			return &apis.HealthCheckResponse{HTTPResponse: httpResponse(200)}, nil
		},
	}
	c := newTestClient(api)

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestHealthCheckError(t *testing.T) {
	api := &mockAPI{
		healthCheckFn: func(ctx context.Context) (*apis.HealthCheckResponse, error) {
			return &apis.HealthCheckResponse{
				HTTPResponse: httpResponse(503),
				Body:         []byte("unavailable"),
			}, nil
		},
	}
	c := newTestClient(api)

	err := c.HealthCheck(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
}

// =========================================================================
// 就绪轮询
// =========================================================================

func TestWaitForReadyImmediate(t *testing.T) {
	calls := 0
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			calls++
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: apis.Running},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	info, err := sb.WaitForReady(context.Background(), WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
	if info.State != StateRunning {
		t.Errorf("State = %q, want running", info.State)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWaitForReadyPolling(t *testing.T) {
	calls := 0
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			calls++
			state := apis.Paused
			if calls >= 3 {
				state = apis.Running
			}
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: state},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	info, err := sb.WaitForReady(context.Background(), WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
	if info.State != StateRunning {
		t.Errorf("State = %q, want running", info.State)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWaitForReadyContextCanceled(t *testing.T) {
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: apis.Paused},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := sb.WaitForReady(ctx, WithPollInterval(5*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestWaitForReadyPollTimeout(t *testing.T) {
	api := &mockAPI{
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: apis.Paused},
			}, nil
		},
	}
	sb := newTestSandbox(api)

	_, err := sb.WaitForReady(context.Background(),
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(30*time.Millisecond),
	)
	var timeoutErr *PollTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *PollTimeoutError", err)
	}
	if timeoutErr.LastStatus == nil || timeoutErr.LastStatus.Status != "paused" {
		t.Errorf("LastStatus = %+v, want paused", timeoutErr.LastStatus)
	}
}

func TestCreateAndWait(t *testing.T) {
	api := &mockAPI{
		createSandboxFn: func(ctx context.Context, body apis.CreateSandboxJSONRequestBody) (*apis.CreateSandboxResponse, error) {
			return &apis.CreateSandboxResponse{
				HTTPResponse: httpResponse(201),
				JSON201:      &apis.Sandbox{SandboxID: "sbx-new", TemplateID: body.TemplateID, ClientID: "c1"},
			}, nil
		},
		getSandboxFn: func(ctx context.Context, sandboxID apis.SandboxID) (*apis.GetSandboxResponse, error) {
			return &apis.GetSandboxResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.SandboxDetail{SandboxID: sandboxID, State: apis.Running},
			}, nil
		},
	}
	c := newTestClient(api)

	sb, info, err := c.CreateAndWait(context.Background(), CreateParams{TemplateID: "tpl-1"}, WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("CreateAndWait: %v", err)
	}
	if sb.ID() != "sbx-new" {
		t.Errorf("ID = %q, want sbx-new", sb.ID())
	}
	if info.State != StateRunning {
		t.Errorf("State = %q, want running", info.State)
	}
}

func TestCreateAndWaitCreateFails(t *testing.T) {
	api := &mockAPI{
		createSandboxFn: func(ctx context.Context, body apis.CreateSandboxJSONRequestBody) (*apis.CreateSandboxResponse, error) {
			return &apis.CreateSandboxResponse{
				HTTPResponse: httpResponse(400),
				Body:         []byte(`{"message":"bad request"}`),
			}, nil
		},
	}
	c := newTestClient(api)

	_, _, err := c.CreateAndWait(context.Background(), CreateParams{TemplateID: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}
}

// =========================================================================
// 模板管理
// =========================================================================

func TestListTemplates(t *testing.T) {
	api := &mockAPI{
		listTemplatesFn: func(ctx context.Context, params *apis.ListTemplatesParams) (*apis.ListTemplatesResponse, error) {
			return &apis.ListTemplatesResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &[]apis.Template{
					{TemplateID: "tpl-1", Aliases: []string{"base"}},
					{TemplateID: "tpl-2"},
				},
			}, nil
		},
	}
	c := newTestClient(api)

	templates, err := c.ListTemplates(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(templates) != 2 || templates[0].TemplateID != "tpl-1" {
		t.Errorf("templates = %+v", templates)
	}
}

func TestListTemplatesError(t *testing.T) {
	api := &mockAPI{
		listTemplatesFn: func(ctx context.Context, params *apis.ListTemplatesParams) (*apis.ListTemplatesResponse, error) {
			return &apis.ListTemplatesResponse{
				HTTPResponse: httpResponse(500),
				Body:         []byte("internal error"),
			}, nil
		},
	}
	c := newTestClient(api)

	if _, err := c.ListTemplates(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateTemplate(t *testing.T) {
	var gotBody apis.CreateTemplateJSONRequestBody
	api := &mockAPI{
		createTemplateFn: func(ctx context.Context, body apis.CreateTemplateJSONRequestBody) (*apis.CreateTemplateResponse, error) {
			gotBody = body
			return &apis.CreateTemplateResponse{
				HTTPResponse: httpResponse(202),
				JSON202: &apis.TemplateRequestResponse{
					TemplateID: "tpl-new",
					BuildID:    "build-1",
				},
			}, nil
		},
	}
	c := newTestClient(api)

	resp, err := c.CreateTemplate(context.Background(), CreateTemplateParams{
		Alias:      "my-template",
		Dockerfile: "FROM ubuntu:24.04",
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if resp.TemplateID != "tpl-new" || resp.BuildID != "build-1" {
		t.Errorf("resp = %+v", resp)
	}
	if gotBody.Alias != "my-template" {
		t.Errorf("alias = %q, want my-template", gotBody.Alias)
	}
}

func TestCreateTemplateError(t *testing.T) {
	api := &mockAPI{
		createTemplateFn: func(ctx context.Context, body apis.CreateTemplateJSONRequestBody) (*apis.CreateTemplateResponse, error) {
			return &apis.CreateTemplateResponse{
				HTTPResponse: httpResponse(409),
				Body:         []byte(`{"message":"alias taken"}`),
			}, nil
		},
	}
	c := newTestClient(api)

	if _, err := c.CreateTemplate(context.Background(), CreateTemplateParams{Alias: "dup"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetTemplate(t *testing.T) {
	api := &mockAPI{
		getTemplateFn: func(ctx context.Context, templateID apis.TemplateID, params *apis.GetTemplateParams) (*apis.GetTemplateResponse, error) {
			return &apis.GetTemplateResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.TemplateWithBuilds{
					TemplateID: templateID,
					Builds: []apis.TemplateBuild{
						{BuildID: "build-1", Status: apis.TemplateBuildStatusReady},
					},
				},
			}, nil
		},
	}
	c := newTestClient(api)

	tpl, err := c.GetTemplate(context.Background(), "tpl-1", nil)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if tpl.TemplateID != "tpl-1" || len(tpl.Builds) != 1 {
		t.Errorf("tpl = %+v", tpl)
	}
	if tpl.Builds[0].Status != apis.TemplateBuildStatusReady {
		t.Errorf("build status = %q", tpl.Builds[0].Status)
	}
}

func TestDeleteTemplate(t *testing.T) {
	var gotID string
	api := &mockAPI{
		deleteTemplateFn: func(ctx context.Context, templateID apis.TemplateID) (*apis.DeleteTemplateResponse, error) {
			gotID = templateID
			return &apis.DeleteTemplateResponse{HTTPResponse: httpResponse(204)}, nil
		},
	}
	c := newTestClient(api)

	if err := c.DeleteTemplate(context.Background(), "tpl-1"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if gotID != "tpl-1" {
		t.Errorf("templateID = %q, want tpl-1", gotID)
	}
}

func TestDeleteTemplateError(t *testing.T) {
	api := &mockAPI{
		deleteTemplateFn: func(ctx context.Context, templateID apis.TemplateID) (*apis.DeleteTemplateResponse, error) {
			return &apis.DeleteTemplateResponse{
				HTTPResponse: httpResponse(404),
				Body:         []byte(`{"message":"not found"}`),
			}, nil
		},
	}
	c := newTestClient(api)

	if err := c.DeleteTemplate(context.Background(), "tpl-missing"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStartTemplateBuild(t *testing.T) {
	var gotTemplate, gotBuild string
	api := &mockAPI{
		startTemplateBuildFn: func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, body apis.StartTemplateBuildJSONRequestBody) (*apis.StartTemplateBuildResponse, error) {
			gotTemplate, gotBuild = templateID, buildID
			return &apis.StartTemplateBuildResponse{HTTPResponse: httpResponse(202)}, nil
		},
	}
	c := newTestClient(api)

	err := c.StartTemplateBuild(context.Background(), "tpl-1", "build-1", StartTemplateBuildParams{
		Dockerfile: ptr("FROM alpine"),
	})
	if err != nil {
		t.Fatalf("StartTemplateBuild: %v", err)
	}
	if gotTemplate != "tpl-1" || gotBuild != "build-1" {
		t.Errorf("got %q/%q, want tpl-1/build-1", gotTemplate, gotBuild)
	}
}

func TestGetTemplateBuildStatus(t *testing.T) {
	api := &mockAPI{
		getBuildStatusFn: func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams) (*apis.GetTemplateBuildStatusResponse, error) {
			return &apis.GetTemplateBuildStatusResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.TemplateBuildInfo{
					TemplateID: templateID,
					BuildID:    buildID,
					Status:     apis.TemplateBuildStatusBuilding,
					Logs:       []string{"step 1/3"},
				},
			}, nil
		},
	}
	c := newTestClient(api)

	info, err := c.GetTemplateBuildStatus(context.Background(), "tpl-1", "build-1", nil)
	if err != nil {
		t.Fatalf("GetTemplateBuildStatus: %v", err)
	}
	if info.Status != apis.TemplateBuildStatusBuilding {
		t.Errorf("Status = %q, want building", info.Status)
	}
	if len(info.Logs) != 1 {
		t.Errorf("Logs = %v", info.Logs)
	}
}

func TestGetTemplateByAlias(t *testing.T) {
	api := &mockAPI{
		getTemplateByAliasFn: func(ctx context.Context, alias string) (*apis.GetTemplateByAliasResponse, error) {
			return &apis.GetTemplateByAliasResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.TemplateAliasResponse{TemplateID: "tpl-1", Alias: alias},
			}, nil
		},
	}
	c := newTestClient(api)

	resp, err := c.GetTemplateByAlias(context.Background(), "base")
	if err != nil {
		t.Fatalf("GetTemplateByAlias: %v", err)
	}
	if resp.TemplateID != "tpl-1" || resp.Alias != "base" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetTemplateByAliasNotFound(t *testing.T) {
	api := &mockAPI{
		getTemplateByAliasFn: func(ctx context.Context, alias string) (*apis.GetTemplateByAliasResponse, error) {
			return &apis.GetTemplateByAliasResponse{
				HTTPResponse: httpResponse(404),
				Body:         []byte(`{"message":"alias not found"}`),
			}, nil
		},
	}
	c := newTestClient(api)

	_, err := c.GetTemplateByAlias(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestManageTemplateTags(t *testing.T) {
	api := &mockAPI{
		manageTemplateTagsFn: func(ctx context.Context, body apis.ManageTemplateTagsJSONRequestBody) (*apis.ManageTemplateTagsResponse, error) {
			if len(body.Assign) != 1 || body.Assign[0].Tag != "stable" {
				t.Errorf("assign = %+v", body.Assign)
			}
			return &apis.ManageTemplateTagsResponse{
				HTTPResponse: httpResponse(201),
				JSON201: &apis.AssignedTemplateTags{
					Tags: []apis.TemplateTag{{TemplateID: "tpl-1", Tag: "stable"}},
				},
			}, nil
		},
	}
	c := newTestClient(api)

	tags, err := c.ManageTemplateTags(context.Background(), ManageTagsParams{
		Assign: []apis.TemplateTag{{TemplateID: "tpl-1", Tag: "stable"}},
	})
	if err != nil {
		t.Fatalf("ManageTemplateTags: %v", err)
	}
	if len(tags.Tags) != 1 || tags.Tags[0].Tag != "stable" {
		t.Errorf("tags = %+v", tags)
	}
}

// =========================================================================
// 构建轮询
// =========================================================================

func TestWaitForBuildReady(t *testing.T) {
	calls := 0
	api := &mockAPI{
		getBuildStatusFn: func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams) (*apis.GetTemplateBuildStatusResponse, error) {
			calls++
			status := apis.TemplateBuildStatusBuilding
			if calls >= 2 {
				status = apis.TemplateBuildStatusReady
			}
			return &apis.GetTemplateBuildStatusResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.TemplateBuildInfo{
					TemplateID: templateID,
					BuildID:    buildID,
					Status:     status,
				},
			}, nil
		},
	}
	c := newTestClient(api)

	info, err := c.WaitForBuild(context.Background(), "tpl-1", "build-1", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("WaitForBuild: %v", err)
	}
	if info.Status != apis.TemplateBuildStatusReady {
		t.Errorf("Status = %q, want ready", info.Status)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWaitForBuildError(t *testing.T) {
	api := &mockAPI{
		getBuildStatusFn: func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams) (*apis.GetTemplateBuildStatusResponse, error) {
			return &apis.GetTemplateBuildStatusResponse{
				HTTPResponse: httpResponse(200),
				JSON200: &apis.TemplateBuildInfo{
					TemplateID: templateID,
					BuildID:    buildID,
					Status:     apis.TemplateBuildStatusError,
					Reason:     ptr("docker build failed"),
				},
			}, nil
		},
	}
	c := newTestClient(api)

	info, err := c.WaitForBuild(context.Background(), "tpl-1", "build-1", WithPollInterval(time.Millisecond))
	if err == nil {
		t.Fatal("expected error for failed build")
	}
	// 失败时也返回最后的构建信息，供调用方取日志和原因。
	if info == nil || info.Status != apis.TemplateBuildStatusError {
		t.Errorf("info = %+v, want status error", info)
	}
}

func TestWaitForBuildOnPoll(t *testing.T) {
	calls := 0
	var attempts []int
	api := &mockAPI{
		getBuildStatusFn: func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams) (*apis.GetTemplateBuildStatusResponse, error) {
			calls++
			status := apis.TemplateBuildStatusWaiting
			if calls >= 3 {
				status = apis.TemplateBuildStatusReady
			}
			return &apis.GetTemplateBuildStatusResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.TemplateBuildInfo{Status: status},
			}, nil
		},
	}
	c := newTestClient(api)

	_, err := c.WaitForBuild(context.Background(), "tpl-1", "build-1",
		WithPollInterval(time.Millisecond),
		WithOnPoll(func(attempt int) { attempts = append(attempts, attempt) }),
	)
	if err != nil {
		t.Fatalf("WaitForBuild: %v", err)
	}
	if len(attempts) != 3 || attempts[0] != 1 || attempts[2] != 3 {
		t.Errorf("attempts = %v, want [1 2 3]", attempts)
	}
}

func TestWaitForBuildTimeout(t *testing.T) {
	api := &mockAPI{
		getBuildStatusFn: func(ctx context.Context, templateID apis.TemplateID, buildID apis.BuildID, params *apis.GetTemplateBuildStatusParams) (*apis.GetTemplateBuildStatusResponse, error) {
			return &apis.GetTemplateBuildStatusResponse{
				HTTPResponse: httpResponse(200),
				JSON200:      &apis.TemplateBuildInfo{Status: apis.TemplateBuildStatusBuilding},
			}, nil
		},
	}
	c := newTestClient(api)

	_, err := c.WaitForBuild(context.Background(), "tpl-1", "build-1",
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(30*time.Millisecond),
	)
	var timeoutErr *PollTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *PollTimeoutError", err)
	}
	if timeoutErr.LastStatus == nil || timeoutErr.LastStatus.Status != "building" {
		t.Errorf("LastStatus = %+v, want building", timeoutErr.LastStatus)
	}
}

// =========================================================================
// 错误类型
// =========================================================================

func TestAPIErrorMessage(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   []byte
		want   string
	}{
		{
			name:   "json message",
			status: 404,
			body:   []byte(`{"message":"resource not found"}`),
			want:   "api error: status 404: resource not found",
		},
		{
			name:   "plain body",
			status: 500,
			body:   []byte("internal error"),
			want:   "api error: status 500, body: internal error",
		},
		{
			name:   "empty body",
			status: 404,
			body:   nil,
			want:   "api error: status 404, body: ",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newAPIError(tc.status, tc.body).Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAPIErrorCode(t *testing.T) {
	e := newAPIError(403, []byte(`{"code":"forbidden","message":"no access"}`))
	if e.Code != "forbidden" {
		t.Errorf("Code = %q, want forbidden", e.Code)
	}
	if e.Message != "no access" {
		t.Errorf("Message = %q, want no access", e.Message)
	}
}
