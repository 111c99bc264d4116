package types

// ExperienceItem 一段工作经历
type ExperienceItem struct {
	JobTitle         string   `json:"job_title,omitempty"`        // 职位名称，例如 "Senior Software Engineer"
	Company          string   `json:"company,omitempty"`          // 公司或组织名称
	Location         string   `json:"location,omitempty"`         // 工作地点（如有）
	StartDate        string   `json:"start_date,omitempty"`       // 开始时间，保留简历中的自由文本，例如 "Jan 2020"
	EndDate          string   `json:"end_date,omitempty"`         // 结束时间，例如 "Present"、"Jun 2024"
	Responsibilities []string `json:"responsibilities,omitempty"` // 职责与成果描述
}

// EducationItem 一段教育经历
type EducationItem struct {
	Degree      string `json:"degree,omitempty"`      // 学位，例如 "B.Sc. Computer Science"
	Institution string `json:"institution,omitempty"` // 学校或机构名称
	Location    string `json:"location,omitempty"`    // 学校所在地（如有）
	StartDate   string `json:"start_date,omitempty"`  // 开始时间（自由文本）
	EndDate     string `json:"end_date,omitempty"`    // 结束或毕业时间（自由文本）
	Grade       string `json:"grade,omitempty"`       // GPA、成绩或等级（如有）
}

// CertificationItem 一项证书或培训
type CertificationItem struct {
	Name   string `json:"name,omitempty"`   // 证书或课程名称
	Issuer string `json:"issuer,omitempty"` // 颁发机构
	Date   string `json:"date,omitempty"`   // 获得时间（自由文本）
}

// ContactInfo 候选人联系方式
type ContactInfo struct {
	Email    string `json:"email,omitempty"`    // 主邮箱
	Phone    string `json:"phone,omitempty"`    // 主电话（自由文本）
	Location string `json:"location,omitempty"` // 地址或所在地描述
	LinkedIn string `json:"linkedin,omitempty"` // LinkedIn 主页（如有）
	GitHub   string `json:"github,omitempty"`   // GitHub 主页（如有）
	Website  string `json:"website,omitempty"`  // 个人网站或作品集（如有）
}

// Resume 结构化简历记录。
// 所有字段都是可选的：提取器未能填充某个字段不视为错误。
type Resume struct {
	FullName       string              `json:"full_name,omitempty"`      // 候选人姓名
	Contact        *ContactInfo        `json:"contact,omitempty"`        // 联系方式
	Summary        string              `json:"summary,omitempty"`        // 个人简介或求职目标
	Experience     []ExperienceItem    `json:"experience,omitempty"`     // 工作经历，若可判断则按时间倒序
	Education      []EducationItem     `json:"education,omitempty"`      // 教育经历
	Skills         []string            `json:"skills,omitempty"`         // 技能列表
	Certifications []CertificationItem `json:"certifications,omitempty"` // 证书
	Languages      []string            `json:"languages,omitempty"`      // 语言能力
	RawText        string              `json:"raw_text,omitempty"`       // 原始或轻度清洗后的简历文本（可选）
}

// MostRecentJobTitle 返回最近一段经历的职位名称，没有则返回空字符串
func (r *Resume) MostRecentJobTitle() string {
	if len(r.Experience) == 0 {
		return ""
	}
	return r.Experience[0].JobTitle
}

// ContactLocation 返回联系方式中的所在地，没有则返回空字符串
func (r *Resume) ContactLocation() string {
	if r.Contact == nil {
		return ""
	}
	return r.Contact.Location
}
