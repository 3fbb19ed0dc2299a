package models

import "strings"

// CareerContract names the field set a career-detail response is expected to carry.
// The two versions are served by different endpoints and are never merged.
type CareerContract struct {
	Version string
	Fields  []string
}

var (
	// CareerContractV1 keeps competencies in a single field. Served by the stream endpoint.
	CareerContractV1 = CareerContract{
		Version: "v1",
		Fields: []string{
			"name", "salary_info", "development_plan",
			"learning_resources", "core_competencies", "daily_workflow",
		},
	}

	// CareerContractV2 splits competencies into hard skills, soft skills and MBTI advantage.
	CareerContractV2 = CareerContract{
		Version: "v2",
		Fields: []string{
			"name", "salary_info", "development_plan", "learning_resources",
			"hard_skills", "soft_skills", "mbti_advantage", "daily_workflow",
		},
	}
)

// FieldList renders the fields as "a、b和c".
func (c CareerContract) FieldList() string {
	switch len(c.Fields) {
	case 0:
		return ""
	case 1:
		return c.Fields[0]
	}
	last := len(c.Fields) - 1
	return strings.Join(c.Fields[:last], "、") + "和" + c.Fields[last]
}

// Missing returns the contract fields absent from a parsed model response.
func (c CareerContract) Missing(doc map[string]any) []string {
	var missing []string
	for _, f := range c.Fields {
		if _, ok := doc[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// CareerDetailsV2 is the batch career-detail payload, also used as the failure fallback.
type CareerDetailsV2 struct {
	Error             string `json:"error,omitempty"`
	Name              string `json:"name"`
	SalaryInfo        string `json:"salary_info"`
	DevelopmentPlan   string `json:"development_plan"`
	LearningResources string `json:"learning_resources"`
	HardSkills        string `json:"hard_skills"`
	SoftSkills        string `json:"soft_skills"`
	MBTIAdvantage     string `json:"mbti_advantage"`
	DailyWorkflow     string `json:"daily_workflow"`
}

// ParseFallbackDetails is returned when the model answered but its text was not valid JSON.
func ParseFallbackDetails(careerName string) CareerDetailsV2 {
	return CareerDetailsV2{
		Error:             "API响应解析失败",
		Name:              careerName,
		SalaryInfo:        "无法获取薪资信息",
		DevelopmentPlan:   "<p>获取职业发展路径信息失败</p>",
		LearningResources: "<p>获取学习资源信息失败</p>",
		HardSkills:        "<p>获取硬技能信息失败</p>",
		SoftSkills:        "<p>获取软技能信息失败</p>",
		MBTIAdvantage:     "<p>获取MBTI优势分析失败</p>",
		DailyWorkflow:     "<p>获取日常工作流程信息失败</p>",
	}
}

// CallFallbackDetails is returned when the upstream call itself could not be made.
func CallFallbackDetails(careerName string, err error) CareerDetailsV2 {
	retry := "<p>请稍后再试</p>"
	return CareerDetailsV2{
		Error:             err.Error(),
		Name:              careerName,
		SalaryInfo:        "调用AI分析时出错",
		DevelopmentPlan:   "<p>错误: " + err.Error() + "</p>",
		LearningResources: retry,
		HardSkills:        retry,
		SoftSkills:        retry,
		MBTIAdvantage:     retry,
		DailyWorkflow:     retry,
	}
}
