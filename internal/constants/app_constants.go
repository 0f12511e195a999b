package constants

// 后端接口路径。资源前缀均以 "/" 结尾，单条记录路径为 前缀 + id + "/"。
const (
	// HRMS 模块
	EmployeePrefix   = "/api/hrms/employee/"
	ResumePrefix     = "/api/hrms/resume/"
	AttendancePrefix = "/api/hrms/attendance/"
	LeavePrefix      = "/api/hrms/leave/"

	// 员工附加接口
	EmployeeFieldPermissionPath = EmployeePrefix + "field_permission/"
	EmployeeCountPath           = EmployeePrefix + "get_employee_count/"
	EmployeeExportPath          = EmployeePrefix + "export/"
	EmployeeImportPath          = EmployeePrefix + "import/"

	// 考勤签到签退、请假审批
	AttendanceCheckInPath  = AttendancePrefix + "check_in/"
	AttendanceCheckOutPath = AttendancePrefix + "check_out/"
	LeaveMyLeavesPath      = LeavePrefix + "my_leaves/"
	LeaveApproveAction     = "approve/"

	// 简历上传与分析。analyze 没有结尾斜杠，与后端路由保持一致。
	ResumeUploadPath  = ResumePrefix + "upload/"
	ResumeAnalyzePath = ResumePrefix + "analyze"
	ResumeChatPath    = ResumePrefix + "chat/"

	// 知识库模块
	DocumentPrefix = "/api/kb/document/"
	CategoryPrefix = "/api/kb/category/"
	TagPrefix      = "/api/kb/tag/"

	// 文档详情下的动作
	DocumentIncrementViewAction   = "increment_view/"
	DocumentRollbackVersionAction = "rollback_version/"

	// DefaultDictionaryPath 字典查询接口
	DefaultDictionaryPath = "/api/init/dictionary/"
)

// 字典键
const (
	DictGender     = "gender"
	DictStatus     = "status"
	DictDepartment = "department"
)

// 请求头
const (
	HeaderRequestID      = "X-Request-Id"
	HeaderAuthorization  = "Authorization"
	HeaderAcceptLanguage = "Accept-Language"
)
