package sandbox

import "encoding/json"

// ChartType 图表类型。
type ChartType string

// 图表类型常量。
const (
	ChartTypeLine          ChartType = "line"
	ChartTypeScatter       ChartType = "scatter"
	ChartTypeBar           ChartType = "bar"
	ChartTypePie           ChartType = "pie"
	ChartTypeBoxAndWhisker ChartType = "box_and_whisker"
	ChartTypeSuperChart    ChartType = "superchart"
)

// Chart 解码后的图表，五种变体之一:
// *PointChart（line/scatter）、*BarChart、*PieChart、
// *BoxAndWhiskerChart、*SuperChart。
type Chart interface {
	// ChartType 返回图表类型。
	ChartType() ChartType
}

// PointData 折线/散点图中的一条数据序列。
type PointData struct {
	Label  string       `json:"label"`
	Points [][2]float64 `json:"points"`
}

// PointChart 折线图或散点图（带坐标轴、刻度和缩放方式）。
type PointChart struct {
	Type        ChartType   `json:"type"`
	Title       string      `json:"title,omitempty"`
	XLabel      string      `json:"x_label,omitempty"`
	YLabel      string      `json:"y_label,omitempty"`
	XUnit       string      `json:"x_unit,omitempty"`
	YUnit       string      `json:"y_unit,omitempty"`
	XTicks      []float64   `json:"x_ticks,omitempty"`
	YTicks      []float64   `json:"y_ticks,omitempty"`
	XTickLabels []string    `json:"x_tick_labels,omitempty"`
	YTickLabels []string    `json:"y_tick_labels,omitempty"`
	XScale      string      `json:"x_scale,omitempty"`
	YScale      string      `json:"y_scale,omitempty"`
	Elements    []PointData `json:"elements,omitempty"`
}

// ChartType 返回图表类型（line 或 scatter）。
func (c *PointChart) ChartType() ChartType { return c.Type }

// BarData 柱状图中的一根柱。
type BarData struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Group string  `json:"group,omitempty"`
}

// BarChart 柱状图。
type BarChart struct {
	Type     ChartType `json:"type"`
	Title    string    `json:"title,omitempty"`
	XLabel   string    `json:"x_label,omitempty"`
	YLabel   string    `json:"y_label,omitempty"`
	Elements []BarData `json:"elements,omitempty"`
}

// ChartType 返回图表类型。
func (c *BarChart) ChartType() ChartType { return c.Type }

// PieData 饼图中的一块。
type PieData struct {
	Label  string  `json:"label"`
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius,omitempty"`
}

// PieChart 饼图。
type PieChart struct {
	Type     ChartType `json:"type"`
	Title    string    `json:"title,omitempty"`
	Elements []PieData `json:"elements,omitempty"`
}

// ChartType 返回图表类型。
func (c *PieChart) ChartType() ChartType { return c.Type }

// BoxAndWhiskerData 箱线图中的一个箱体。
type BoxAndWhiskerData struct {
	Label         string    `json:"label"`
	Min           float64   `json:"min"`
	FirstQuartile float64   `json:"first_quartile"`
	Median        float64   `json:"median"`
	ThirdQuartile float64   `json:"third_quartile"`
	Max           float64   `json:"max"`
	Outliers      []float64 `json:"outliers,omitempty"`
}

// BoxAndWhiskerChart 箱线图。
type BoxAndWhiskerChart struct {
	Type     ChartType           `json:"type"`
	Title    string              `json:"title,omitempty"`
	XLabel   string              `json:"x_label,omitempty"`
	YLabel   string              `json:"y_label,omitempty"`
	Elements []BoxAndWhiskerData `json:"elements,omitempty"`
}

// ChartType 返回图表类型。
func (c *BoxAndWhiskerChart) ChartType() ChartType { return c.Type }

// SuperChart 复合图表，嵌套若干子图表。
// 解码时无法识别的子图表会被丢弃，不影响其余元素。
type SuperChart struct {
	Type     ChartType `json:"type"`
	Title    string    `json:"title,omitempty"`
	Elements []Chart   `json:"elements,omitempty"`
}

// ChartType 返回图表类型。
func (c *SuperChart) ChartType() ChartType { return c.Type }

// UnmarshalJSON 递归解码子图表，丢弃无法解码的元素。
func (c *SuperChart) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     ChartType         `json:"type"`
		Title    string            `json:"title,omitempty"`
		Elements []json.RawMessage `json:"elements,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Type = raw.Type
	c.Title = raw.Title
	c.Elements = nil
	for _, el := range raw.Elements {
		chart, err := decodeChartJSON(el)
		if err != nil || chart == nil {
			continue
		}
		c.Elements = append(c.Elements, chart)
	}
	return nil
}

// DecodeChart 将松散类型的图表负载解码为具体变体。
// 负载为 nil 或类型未知时返回 nil — 图表只是结果的可选增强，
// 解码失败不是错误。
func DecodeChart(data map[string]any) Chart {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	chart, err := decodeChartJSON(raw)
	if err != nil {
		return nil
	}
	return chart
}

// decodeChartJSON 按 type 判别字段解码一个图表。
func decodeChartJSON(data []byte) (Chart, error) {
	var header struct {
		Type ChartType `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}

	var chart Chart
	switch header.Type {
	case ChartTypeLine, ChartTypeScatter:
		chart = &PointChart{}
	case ChartTypeBar:
		chart = &BarChart{}
	case ChartTypePie:
		chart = &PieChart{}
	case ChartTypeBoxAndWhisker:
		chart = &BoxAndWhiskerChart{}
	case ChartTypeSuperChart:
		chart = &SuperChart{}
	default:
		return nil, nil
	}

	if err := json.Unmarshal(data, chart); err != nil {
		return nil, err
	}
	return chart, nil
}
