package types

import (
	"encoding/json"
	"io"
)

// ResumeUpload 上传一份简历所需的内容
type ResumeUpload struct {
	FileName      string
	Reader        io.Reader
	CandidateName string
	Position      string
}

// UploadedFile 上传成功后服务端返回的文件引用，只在调用分析前持有
type UploadedFile struct {
	FileID string `json:"file_id"`
	Name   string `json:"name,omitempty"`
}

// UnmarshalJSON 上传接口返回的是简历文件记录，没有 file_id 时用记录的 id
func (u *UploadedFile) UnmarshalJSON(data []byte) error {
	var raw struct {
		FileID ID     `json:"file_id"`
		ID     ID     `json:"id"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.FileID = raw.FileID.String()
	if u.FileID == "" {
		u.FileID = raw.ID.String()
	}
	u.Name = raw.Name
	return nil
}

// AnalyzeRequest 简历分析请求
type AnalyzeRequest struct {
	FileID         string `json:"file_id"`
	JobDescription string `json:"job_description,omitempty"`
}

// WorkExperience 工作经历
type WorkExperience struct {
	Company     string `json:"company,omitempty"`
	Position    string `json:"position,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// Project 项目经历
type Project struct {
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// AnalysisResult 简历分析结果。所有字段都是可选的，服务端能提取多少就返回多少。
type AnalysisResult struct {
	Name             string           `json:"name,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Email            string           `json:"email,omitempty"`
	Education        string           `json:"education,omitempty"`
	WorkExperience   []WorkExperience `json:"work_experience,omitempty"`
	Skills           []string         `json:"skills,omitempty"`
	Projects         []Project        `json:"projects,omitempty"`
	Other            string           `json:"other,omitempty"`
	Score            *float64         `json:"score,omitempty"`
	ScoreExplanation string           `json:"score_explanation,omitempty"`
}

// ChatRequest 单轮对话请求
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply 单轮对话回复
type ChatReply struct {
	Reply string `json:"reply"`
}
