package sandbox

import (
	"github.com/qiniu/sandbox-go/apis"
)

// ---------------------------------------------------------------------------
// SDK 自有类型 — 模板相关
// ---------------------------------------------------------------------------

// TemplateBuildStatus 模板构建状态。
type TemplateBuildStatus = apis.TemplateBuildStatus

// 模板构建状态常量。
const (
	BuildStatusReady    = apis.TemplateBuildStatusReady
	BuildStatusError    = apis.TemplateBuildStatusError
	BuildStatusBuilding = apis.TemplateBuildStatusBuilding
	BuildStatusWaiting  = apis.TemplateBuildStatusWaiting
	BuildStatusUploaded = apis.TemplateBuildStatusUploaded
)

// CreateTemplateParams 创建模板的请求参数。
type CreateTemplateParams = apis.CreateTemplateJSONRequestBody

// UpdateTemplateParams 更新模板的请求参数。
type UpdateTemplateParams = apis.UpdateTemplateJSONRequestBody

// StartTemplateBuildParams 启动模板构建的请求参数。
type StartTemplateBuildParams = apis.StartTemplateBuildJSONRequestBody

// ListTemplatesParams 列出模板的查询参数。
type ListTemplatesParams = apis.ListTemplatesParams

// GetTemplateParams 获取模板详情的查询参数。
type GetTemplateParams = apis.GetTemplateParams

// GetBuildStatusParams 获取构建状态的查询参数。
type GetBuildStatusParams = apis.GetTemplateBuildStatusParams

// GetBuildLogsParams 获取构建日志的查询参数。
type GetBuildLogsParams = apis.GetTemplateBuildLogsParams

// ManageTagsParams 管理模板标签的请求参数。
type ManageTagsParams = apis.ManageTemplateTagsJSONRequestBody

// DeleteTagsParams 删除模板标签的请求参数。
type DeleteTagsParams = apis.DeleteTemplateTagsJSONRequestBody
