package crud

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/json"
	"golang.org/x/sync/errgroup"

	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/dictionary"
	"hrms-admin-go/internal/i18n"
	"hrms-admin-go/internal/types"
)

// 员工表的按钮权限标识
const (
	AuthEmployeeCreate = "employee:Create"
	AuthEmployeeUpdate = "employee:Update"
	AuthEmployeeDelete = "employee:Delete"
)

// EmployeeDeps 构建员工表描述需要的依赖
type EmployeeDeps struct {
	API        Service[types.Employee]
	Dictionary dictionary.Lookup
	Translator i18n.Translator // 为空时使用简体中文
}

// NewEmployeeOptions 构建员工表的描述。性别、状态、部门三个字典并发读取，
// 全部取到后才返回；任一字典失败则整体失败。
func NewEmployeeOptions(ctx context.Context, deps EmployeeDeps) (*Options[types.Employee], error) {
	if deps.API == nil || deps.Dictionary == nil {
		return nil, fmt.Errorf("员工表描述缺少依赖")
	}
	tr := deps.Translator
	if tr == nil {
		tr = i18n.New("zh-CN")
	}

	keys := []string{constants.DictGender, constants.DictStatus, constants.DictDepartment}
	dicts := make([][]dictionary.Option, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			opts, err := deps.Dictionary.Options(gctx, key)
			if err != nil {
				return fmt.Errorf("加载字典 %s 失败: %w", key, err)
			}
			dicts[i] = opts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	gender, status, department := dicts[0], dicts[1], dicts[2]

	title := func(key string) string { return tr.T("employee." + key) }
	required := func(key string) Rule {
		return Rule{Required: true, Message: fmt.Sprintf(tr.T("rule.required"), title(key))}
	}
	mustSelect := func(key string) Rule {
		return Rule{Required: true, Message: fmt.Sprintf(tr.T("rule.select"), title(key))}
	}

	columns := []Column{
		{
			Key: "id", Title: title("id"), Type: TypeNumber,
			Column: ColumnView{Width: 50},
			Form:   FormView{Hidden: true},
		},
		{
			Key: "avatar", Title: title("avatar"), Type: TypeFileUploader,
			Column: ColumnView{Width: 80, Component: "fs-avatar"},
			Form: FormView{Component: map[string]any{
				"limit":    1,
				"uploader": map[string]any{"type": "form"},
			}},
		},
		{
			Key: "employee_id", Title: title("employee_id"), Type: TypeText,
			Search: SearchView{Show: true},
			Column: ColumnView{Width: 120},
			Form:   FormView{Rules: []Rule{required("employee_id")}},
		},
		{
			Key: "name", Title: title("name"), Type: TypeText,
			Search: SearchView{Show: true},
			Column: ColumnView{Width: 120},
			Form:   FormView{Rules: []Rule{required("name")}},
		},
		{
			Key: "gender", Title: title("gender"), Type: TypeDictSelect,
			Dict:   gender,
			Search: SearchView{Show: true},
			Column: ColumnView{Width: 80},
			Form:   FormView{Default: "", Rules: []Rule{mustSelect("gender")}},
		},
		{
			Key: "mobile", Title: title("mobile"), Type: TypeText,
			Search: SearchView{Show: true},
			Column: ColumnView{Width: 120},
			Form: FormView{Rules: []Rule{
				required("mobile"),
				{Pattern: MobilePattern, Message: tr.T("rule.mobile")},
			}},
		},
		{
			Key: "email", Title: title("email"), Type: TypeText,
			Column: ColumnView{Width: 180},
			Form:   FormView{Rules: []Rule{{Type: "email", Message: tr.T("rule.email")}}},
		},
		{
			Key: "department", Title: title("department"), Type: TypeDictSelect,
			Dict:   department,
			Search: SearchView{Show: true},
			Column: ColumnView{Width: 120},
			Form:   FormView{Rules: []Rule{mustSelect("department")}},
		},
		{
			Key: "position", Title: title("position"), Type: TypeText,
			Column: ColumnView{Width: 120},
			Form:   FormView{Rules: []Rule{required("position")}},
		},
		{
			Key: "hire_date", Title: title("hire_date"), Type: TypeDate,
			Column: ColumnView{Width: 120},
			Form: FormView{Rules: []Rule{
				mustSelect("hire_date"),
				{Type: "date", Message: fmt.Sprintf(tr.T("rule.select"), title("hire_date"))},
			}},
		},
		{
			Key: "status", Title: title("status"), Type: TypeDictSelect,
			Dict:   status,
			Search: SearchView{Show: true},
			Column: ColumnView{Width: 100},
			Form:   FormView{Default: 1, Rules: []Rule{mustSelect("status")}},
		},
		{
			Key: "remark", Title: title("remark"), Type: TypeTextarea,
			Column: ColumnView{Hidden: true},
		},
		{
			Key: "create_datetime", Title: title("create_datetime"), Type: TypeDatetime,
			Column: ColumnView{Width: 180},
			Form:   FormView{Hidden: true},
		},
	}

	return &Options[types.Employee]{
		Request:   BindRequests(deps.API),
		ActionBar: ActionBar{Add: Button{Show: true, Auth: AuthEmployeeCreate}},
		RowHandle: RowHandle{
			Width:  240,
			Edit:   Button{Show: true, Auth: AuthEmployeeUpdate},
			Remove: Button{Show: true, Auth: AuthEmployeeDelete},
		},
		Columns: columns,
	}, nil
}

// ValidateEmployee 用表单规则校验一条员工记录
func ValidateEmployee(opts *Options[types.Employee], e types.Employee) error {
	values, err := toValues(e)
	if err != nil {
		return err
	}
	return ValidateForm(opts.Columns, values)
}

func toValues(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("序列化记录失败: %w", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("解析记录失败: %w", err)
	}
	return values, nil
}
