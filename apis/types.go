package apis

import "time"

// ---------------------------------------------------------------------------
// 沙箱相关类型
// ---------------------------------------------------------------------------

// SandboxID 沙箱 ID。
type SandboxID = string

// TemplateID 模板 ID。
type TemplateID = string

// BuildID 构建 ID。
type BuildID = string

// EnvVars 环境变量。
type EnvVars map[string]string

// SandboxMetadata 沙箱自定义元数据。
type SandboxMetadata map[string]string

// SandboxState 沙箱状态。
type SandboxState string

// 沙箱状态常量。
const (
	Running SandboxState = "running"
	Paused  SandboxState = "paused"
)

// SandboxNetworkConfig 沙箱网络配置。
type SandboxNetworkConfig struct {
	AllowOut           *[]string `json:"allowOut,omitempty"`
	AllowPublicTraffic *bool     `json:"allowPublicTraffic,omitempty"`
	DenyOut            *[]string `json:"denyOut,omitempty"`
	MaskRequestHost    *string   `json:"maskRequestHost,omitempty"`
}

// NewSandbox 创建沙箱的请求体。
type NewSandbox struct {
	TemplateID          string                `json:"templateID"`
	Timeout             *int32                `json:"timeout,omitempty"`
	AutoPause           *bool                 `json:"autoPause,omitempty"`
	AllowInternetAccess *bool                 `json:"allowInternetAccess,omitempty"`
	Secure              *bool                 `json:"secure,omitempty"`
	EnvVars             *EnvVars              `json:"envVars,omitempty"`
	Metadata            *SandboxMetadata      `json:"metadata,omitempty"`
	Network             *SandboxNetworkConfig `json:"network,omitempty"`
}

// Sandbox 创建/连接沙箱的响应体。
type Sandbox struct {
	SandboxID          string  `json:"sandboxID"`
	TemplateID         string  `json:"templateID"`
	ClientID           string  `json:"clientID"`
	Alias              *string `json:"alias,omitempty"`
	Domain             *string `json:"domain,omitempty"`
	EnvdVersion        string  `json:"envdVersion,omitempty"`
	EnvdAccessToken    *string `json:"envdAccessToken,omitempty"`
	TrafficAccessToken *string `json:"trafficAccessToken,omitempty"`
}

// SandboxDetail 沙箱详情。
type SandboxDetail struct {
	SandboxID   string           `json:"sandboxID"`
	TemplateID  string           `json:"templateID"`
	ClientID    string           `json:"clientID"`
	Alias       *string          `json:"alias,omitempty"`
	Domain      *string          `json:"domain,omitempty"`
	State       SandboxState     `json:"state"`
	CPUCount    int32            `json:"cpuCount"`
	MemoryMB    int32            `json:"memoryMB"`
	DiskSizeMB  int32            `json:"diskSizeMB"`
	EnvdVersion string           `json:"envdVersion"`
	StartedAt   time.Time        `json:"startedAt"`
	EndAt       time.Time        `json:"endAt"`
	Metadata    *SandboxMetadata `json:"metadata,omitempty"`
}

// ListedSandbox 沙箱列表条目。
type ListedSandbox struct {
	SandboxID   string           `json:"sandboxID"`
	TemplateID  string           `json:"templateID"`
	ClientID    string           `json:"clientID"`
	Alias       *string          `json:"alias,omitempty"`
	State       SandboxState     `json:"state"`
	CPUCount    int32            `json:"cpuCount"`
	MemoryMB    int32            `json:"memoryMB"`
	DiskSizeMB  int32            `json:"diskSizeMB"`
	EnvdVersion string           `json:"envdVersion"`
	StartedAt   time.Time        `json:"startedAt"`
	EndAt       time.Time        `json:"endAt"`
	Metadata    *SandboxMetadata `json:"metadata,omitempty"`
}

// SandboxListPage 分页的沙箱列表（v2）。
type SandboxListPage struct {
	Sandboxes []ListedSandbox `json:"sandboxes"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// SandboxMetric 沙箱资源指标。
type SandboxMetric struct {
	CPUCount      int32     `json:"cpuCount"`
	CPUUsedPct    float32   `json:"cpuUsedPct"`
	MemTotal      int64     `json:"memTotal"`
	MemUsed       int64     `json:"memUsed"`
	DiskTotal     int64     `json:"diskTotal"`
	DiskUsed      int64     `json:"diskUsed"`
	Timestamp     time.Time `json:"timestamp"`
	TimestampUnix int64     `json:"timestampUnix"`
}

// SandboxLog 沙箱日志条目。
type SandboxLog struct {
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

// SandboxLogEntry 结构化沙箱日志条目。
type SandboxLogEntry struct {
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// SandboxLogs 沙箱日志。
type SandboxLogs struct {
	Logs       []SandboxLog      `json:"logs"`
	LogEntries []SandboxLogEntry `json:"logEntries,omitempty"`
}

// SandboxesWithMetrics 批量沙箱指标。
type SandboxesWithMetrics struct {
	Sandboxes map[string]SandboxMetric `json:"sandboxes"`
}

// ---------------------------------------------------------------------------
// 查询参数
// ---------------------------------------------------------------------------

// ListSandboxesParams 列出沙箱的查询参数（v1）。
type ListSandboxesParams struct {
	// Metadata 元数据过滤查询（如 "user=abc&app=prod"）。
	Metadata *string
}

// ListSandboxesV2Params 列出沙箱的查询参数（v2）。
type ListSandboxesV2Params struct {
	Metadata  *string
	State     *[]SandboxState
	NextToken *string
	Limit     *int32
}

// GetSandboxMetricsParams 获取沙箱指标的查询参数。
type GetSandboxMetricsParams struct {
	// Start 起始时间（Unix 秒）。
	Start *int64
	// End 结束时间（Unix 秒）。
	End *int64
}

// GetSandboxLogsParams 获取沙箱日志的查询参数。
type GetSandboxLogsParams struct {
	// Start 起始时间（Unix 毫秒）。
	Start *int64
	// Limit 返回的最大日志条数。
	Limit *int32
}

// GetSandboxesMetricsParams 批量获取沙箱指标的查询参数。
type GetSandboxesMetricsParams struct {
	SandboxIDs []string
}

// ---------------------------------------------------------------------------
// 模板相关类型
// ---------------------------------------------------------------------------

// TemplateBuildStatus 模板构建状态。
type TemplateBuildStatus string

// 模板构建状态常量。
const (
	TemplateBuildStatusBuilding TemplateBuildStatus = "building"
	TemplateBuildStatusWaiting  TemplateBuildStatus = "waiting"
	TemplateBuildStatusUploaded TemplateBuildStatus = "uploaded"
	TemplateBuildStatusReady    TemplateBuildStatus = "ready"
	TemplateBuildStatusError    TemplateBuildStatus = "error"
)

// Template 模板信息。
type Template struct {
	TemplateID    string              `json:"templateID"`
	Aliases       []string            `json:"aliases,omitempty"`
	BuildID       string              `json:"buildID"`
	BuildStatus   TemplateBuildStatus `json:"buildStatus,omitempty"`
	BuildCount    int32               `json:"buildCount"`
	CPUCount      int32               `json:"cpuCount"`
	MemoryMB      int32               `json:"memoryMB"`
	DiskSizeMB    int32               `json:"diskSizeMB"`
	EnvdVersion   string              `json:"envdVersion"`
	Public        bool                `json:"public"`
	SpawnCount    int64               `json:"spawnCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	LastSpawnedAt *time.Time          `json:"lastSpawnedAt,omitempty"`
}

// TemplateBuild 模板构建记录。
type TemplateBuild struct {
	BuildID     string              `json:"buildID"`
	Status      TemplateBuildStatus `json:"status"`
	CPUCount    int32               `json:"cpuCount"`
	MemoryMB    int32               `json:"memoryMB"`
	DiskSizeMB  *int32              `json:"diskSizeMB,omitempty"`
	EnvdVersion *string             `json:"envdVersion,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	FinishedAt  *time.Time          `json:"finishedAt,omitempty"`
}

// TemplateWithBuilds 模板及其构建记录。
type TemplateWithBuilds struct {
	TemplateID    string          `json:"templateID"`
	Aliases       []string        `json:"aliases,omitempty"`
	Public        bool            `json:"public"`
	SpawnCount    int64           `json:"spawnCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	LastSpawnedAt *time.Time      `json:"lastSpawnedAt,omitempty"`
	Builds        []TemplateBuild `json:"builds"`
}

// TemplateBuildInfo 模板构建状态信息。
type TemplateBuildInfo struct {
	TemplateID string              `json:"templateID"`
	BuildID    string              `json:"buildID"`
	Status     TemplateBuildStatus `json:"status"`
	Reason     *string             `json:"reason,omitempty"`
	Logs       []string            `json:"logs,omitempty"`
}

// BuildLogEntry 构建日志条目。
type BuildLogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Step      *string   `json:"step,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TemplateBuildLogsResponse 构建日志响应。
type TemplateBuildLogsResponse struct {
	Logs       []string        `json:"logs"`
	LogEntries []BuildLogEntry `json:"logEntries,omitempty"`
}

// NewTemplate 创建模板的请求体。
type NewTemplate struct {
	Alias      string   `json:"alias,omitempty"`
	CPUCount   *int32   `json:"cpuCount,omitempty"`
	MemoryMB   *int32   `json:"memoryMB,omitempty"`
	Dockerfile string   `json:"dockerfile,omitempty"`
	StartCmd   *string  `json:"startCmd,omitempty"`
	ReadyCmd   *string  `json:"readyCmd,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// TemplateRequestResponse 创建模板的响应体。
type TemplateRequestResponse struct {
	TemplateID string   `json:"templateID"`
	BuildID    string   `json:"buildID"`
	Aliases    []string `json:"aliases,omitempty"`
	Public     bool     `json:"public"`
}

// TemplateUpdate 更新模板的请求体。
type TemplateUpdate struct {
	Public *bool `json:"public,omitempty"`
}

// TemplateBuildStart 启动模板构建的请求体。
type TemplateBuildStart struct {
	Alias      *string `json:"alias,omitempty"`
	Dockerfile *string `json:"dockerfile,omitempty"`
	StartCmd   *string `json:"startCmd,omitempty"`
	ReadyCmd   *string `json:"readyCmd,omitempty"`
}

// TemplateBuildFileUpload 模板构建文件的上传链接。
type TemplateBuildFileUpload struct {
	Present bool    `json:"present"`
	URL     *string `json:"url,omitempty"`
}

// TemplateAliasResponse 按别名查询模板的响应。
type TemplateAliasResponse struct {
	TemplateID string `json:"templateID"`
	Alias      string `json:"alias"`
}

// TemplateTag 模板标签。
type TemplateTag struct {
	TemplateID string `json:"templateID"`
	BuildID    string `json:"buildID,omitempty"`
	Tag        string `json:"tag"`
}

// ManageTemplateTagsBody 管理模板标签的请求体。
type ManageTemplateTagsBody struct {
	Assign []TemplateTag `json:"assign,omitempty"`
}

// DeleteTemplateTagsBody 删除模板标签的请求体。
type DeleteTemplateTagsBody struct {
	Delete []TemplateTag `json:"delete,omitempty"`
}

// AssignedTemplateTags 已分配的模板标签。
type AssignedTemplateTags struct {
	Tags []TemplateTag `json:"tags"`
}

// ListTemplatesParams 列出模板的查询参数。
type ListTemplatesParams struct {
	TeamID *string
}

// GetTemplateParams 获取模板详情的查询参数。
type GetTemplateParams struct {
	BuildID *string
}

// GetTemplateBuildStatusParams 获取构建状态的查询参数。
type GetTemplateBuildStatusParams struct {
	LogsOffset *int32
}

// GetTemplateBuildLogsParams 获取构建日志的查询参数。
type GetTemplateBuildLogsParams struct {
	Offset *int32
	Level  *string
}
