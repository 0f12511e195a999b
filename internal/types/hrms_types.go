package types

// Employee 员工
type Employee struct {
	ID             ID     `json:"id,omitempty"`
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	Gender         int    `json:"gender"`
	Mobile         string `json:"mobile"`
	Email          string `json:"email,omitempty"`
	Department     ID     `json:"department,omitempty"`
	Position       string `json:"position"`
	HireDate       string `json:"hire_date"` // YYYY-MM-DD
	Status         int    `json:"status"`
	Avatar         string `json:"avatar,omitempty"`
	Remark         string `json:"remark,omitempty"`
	CreateDatetime string `json:"create_datetime,omitempty"`
}

// GetID 实现 Identifiable
func (e Employee) GetID() ID { return e.ID }

// EmployeeCount 员工统计
type EmployeeCount struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Trial    int `json:"trial"`
	Departed int `json:"departed"`
}

// FieldPermission 列权限，描述当前用户对某个字段的可见/可编辑性
type FieldPermission struct {
	FieldName  string `json:"field_name"`
	Title      string `json:"title,omitempty"`
	IsQuery    bool   `json:"is_query"`
	IsCreate   bool   `json:"is_create"`
	IsUpdate   bool   `json:"is_update"`
	Permission string `json:"permission,omitempty"`
}

// Attendance 考勤记录
type Attendance struct {
	ID       ID     `json:"id,omitempty"`
	Employee ID     `json:"employee"`
	Date     string `json:"date"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	Status   int    `json:"status"`
	Remark   string `json:"remark,omitempty"`
}

// GetID 实现 Identifiable
func (a Attendance) GetID() ID { return a.ID }

// Leave 请假申请
type Leave struct {
	ID             ID      `json:"id,omitempty"`
	Employee       ID      `json:"employee"`
	LeaveType      int     `json:"leave_type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Days           float64 `json:"days"`
	Reason         string  `json:"reason"`
	Status         int     `json:"status"`
	Approver       ID      `json:"approver,omitempty"`
	ApproveTime    string  `json:"approve_time,omitempty"`
	ApproveRemark  string  `json:"approve_remark,omitempty"`
	CreateDatetime string  `json:"create_datetime,omitempty"`
}

// GetID 实现 Identifiable
func (l Leave) GetID() ID { return l.ID }

// ResumeFile 服务端保存的简历文件记录
type ResumeFile struct {
	ID             ID     `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	URL            string `json:"url,omitempty"`
	FileURL        string `json:"file_url,omitempty"`
	Engine         string `json:"engine,omitempty"`
	MimeType       string `json:"mime_type,omitempty"`
	Size           string `json:"size,omitempty"`
	MD5Sum         string `json:"md5sum,omitempty"`
	CandidateName  string `json:"candidate_name,omitempty"`
	Position       string `json:"position,omitempty"`
	Status         int    `json:"status"`
	CreateDatetime string `json:"create_datetime,omitempty"`
}

// GetID 实现 Identifiable
func (r ResumeFile) GetID() ID { return r.ID }
