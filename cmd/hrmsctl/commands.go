package main

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/json"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/crud"
	"hrms-admin-go/internal/hrms"
	"hrms-admin-go/internal/i18n"
	"hrms-admin-go/internal/screening"
	"hrms-admin-go/internal/types"
)

const commandHelp = `命令:
  employee list|get <id>|delete <id>|permission|count|export|import <url>|import-template
  attendance list|check-in <employee_id>|check-out <employee_id>
  leave    list|mine|approve <id> [备注]|reject <id> [备注]
  document list|get <id>|categories|tags
  resume   upload <file>|analyze <file_id>|chat <message>|list
  dict     <key>
  schema   employee
  screen   [--path 文件或目录]
  init     [path]  生成示例配置
`

func run(ctx context.Context, cfg *config.Config, f *flags, args []string) error {
	a, err := newApp(cfg, f)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}
	rest := args[min(len(args), 2):]

	switch args[0] {
	case "employee":
		return a.employee(ctx, sub, rest)
	case "attendance":
		return a.attendance(ctx, sub, rest)
	case "leave":
		return a.leave(ctx, sub, rest)
	case "document":
		return a.document(ctx, sub, rest)
	case "resume":
		return a.resume(ctx, sub, rest)
	case "dict":
		return a.dictionary(ctx, sub)
	case "schema":
		return a.schema(ctx, sub)
	case "screen":
		return a.screen(ctx)
	default:
		return fmt.Errorf("未知命令 %q\n%s", args[0], commandHelp)
	}
}

func (a *app) pageQuery() types.PageQuery {
	q := types.NewPageQuery(a.flags.page, a.flags.limit)
	for k, v := range a.flags.filters {
		q = q.With(k, v)
	}
	return q
}

func needID(rest []string) (types.ID, error) {
	if len(rest) == 0 || rest[0] == "" {
		return "", fmt.Errorf("缺少 id 参数")
	}
	return types.ID(rest[0]), nil
}

func (a *app) employee(ctx context.Context, sub string, rest []string) error {
	switch sub {
	case "list":
		page, err := a.employees.List(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.print(page)
	case "get":
		id, err := needID(rest)
		if err != nil {
			return err
		}
		e, err := a.employees.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.print(e)
	case "delete":
		id, err := needID(rest)
		if err != nil {
			return err
		}
		if err := a.employees.Delete(ctx, id); err != nil {
			return err
		}
		return a.print(map[string]any{"deleted": id})
	case "permission":
		perms, err := a.employees.Permission(ctx)
		if err != nil {
			return err
		}
		return a.print(perms)
	case "count":
		count, err := a.employees.Count(ctx)
		if err != nil {
			return err
		}
		return a.print(count)
	case "export":
		data, err := a.employees.Export(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.writeFile(data)
	case "import":
		if len(rest) == 0 {
			return fmt.Errorf("缺少导入文件地址")
		}
		if err := a.employees.Import(ctx, rest[0]); err != nil {
			return err
		}
		return a.print(map[string]any{"imported": rest[0]})
	case "import-template":
		data, err := a.employees.ImportTemplate(ctx)
		if err != nil {
			return err
		}
		return a.writeFile(data)
	default:
		return fmt.Errorf("employee 子命令: list|get|delete|permission|count|export|import|import-template")
	}
}

func (a *app) attendance(ctx context.Context, sub string, rest []string) error {
	switch sub {
	case "list":
		page, err := a.attends.List(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.print(page)
	case "check-in", "check-out":
		id, err := needID(rest)
		if err != nil {
			return err
		}
		clock := a.attends.CheckIn
		if sub == "check-out" {
			clock = a.attends.CheckOut
		}
		rec, err := clock(ctx, id)
		if err != nil {
			return err
		}
		return a.print(rec)
	default:
		return fmt.Errorf("attendance 子命令: list|check-in|check-out")
	}
}

func (a *app) leave(ctx context.Context, sub string, rest []string) error {
	switch sub {
	case "list":
		page, err := a.leaves.List(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.print(page)
	case "mine":
		page, err := a.leaves.MyLeaves(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.print(page)
	case "approve", "reject":
		id, err := needID(rest)
		if err != nil {
			return err
		}
		status := hrms.LeaveApproved
		if sub == "reject" {
			status = hrms.LeaveRejected
		}
		remark := strings.Join(rest[1:], " ")
		l, err := a.leaves.Approve(ctx, id, status, remark)
		if err != nil {
			return err
		}
		return a.print(l)
	default:
		return fmt.Errorf("leave 子命令: list|mine|approve|reject")
	}
}

func (a *app) document(ctx context.Context, sub string, rest []string) error {
	switch sub {
	case "list":
		page, err := a.documents.List(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.print(page)
	case "get":
		id, err := needID(rest)
		if err != nil {
			return err
		}
		doc, err := a.documents.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.print(doc)
	case "categories":
		page, err := a.documents.CategoryList(ctx)
		if err != nil {
			return err
		}
		return a.print(page)
	case "tags":
		page, err := a.documents.TagList(ctx)
		if err != nil {
			return err
		}
		return a.print(page)
	default:
		return fmt.Errorf("document 子命令: list|get|categories|tags")
	}
}

func (a *app) resume(ctx context.Context, sub string, rest []string) error {
	switch sub {
	case "upload":
		if len(rest) == 0 {
			return fmt.Errorf("缺少简历文件路径")
		}
		f, err := os.Open(rest[0])
		if err != nil {
			return err
		}
		defer f.Close()
		uploaded, err := a.resumes.Upload(ctx, types.ResumeUpload{
			FileName:      filepath.Base(rest[0]),
			Reader:        f,
			CandidateName: a.flags.candidate,
			Position:      a.flags.position,
		})
		if err != nil {
			return err
		}
		return a.print(uploaded)
	case "analyze":
		if len(rest) == 0 {
			return fmt.Errorf("缺少 file_id 参数")
		}
		jd := a.flags.jd
		if jd == "" {
			jd = a.cfg.Screening.JobDescription
		}
		result, err := a.resumes.Analyze(ctx, types.AnalyzeRequest{FileID: rest[0], JobDescription: jd})
		if err != nil {
			return err
		}
		return a.print(result)
	case "chat":
		reply, err := a.resumes.SendChatMessage(ctx, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		return a.print(reply)
	case "list":
		page, err := a.resumes.List(ctx, a.pageQuery())
		if err != nil {
			return err
		}
		return a.print(page)
	default:
		return fmt.Errorf("resume 子命令: upload|analyze|chat|list")
	}
}

func (a *app) dictionary(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("缺少字典键，例如: hrmsctl dict gender")
	}
	load := a.dict.Options
	if a.flags.refresh {
		load = a.dict.Refresh
	}
	options, err := load(ctx, key)
	if err != nil {
		return err
	}
	return a.print(options)
}

func (a *app) schema(ctx context.Context, table string) error {
	if table != "employee" {
		return fmt.Errorf("schema 目前只支持 employee")
	}
	lang := a.flags.lang
	if lang == "" {
		lang = a.cfg.API.Language
	}
	opts, err := crud.NewEmployeeOptions(ctx, crud.EmployeeDeps{
		API:        a.employees,
		Dictionary: a.dict,
		Translator: i18n.New(lang),
	})
	if err != nil {
		return err
	}
	return a.print(opts)
}

func (a *app) screen(ctx context.Context) error {
	settings := screening.Settings{
		Workers:          a.cfg.Screening.Workers,
		JobDescription:   a.cfg.Screening.JobDescription,
		Position:         a.flags.position,
		AnalyzePerMinute: a.cfg.Screening.AnalyzePerMinute,
	}
	if a.flags.workers > 0 {
		settings.Workers = a.flags.workers
	}
	if a.flags.jd != "" {
		settings.JobDescription = a.flags.jd
	}
	prefix := a.cfg.Screening.Prefix
	if a.flags.prefix != "" {
		prefix = a.flags.prefix
	}

	var (
		source screening.Source
		opts   []screening.Option
	)
	if len(a.flags.paths) > 0 {
		source = screening.NewFileSource(a.flags.paths...)
	}

	// 记录与事件是可选的，没有配置外部存储时只输出结果
	if a.cfg.MinIO.Endpoint != "" || a.cfg.MySQL.Host != "" || a.cfg.RabbitMQ.URL != "" {
		store, err := a.storage(ctx)
		if err != nil {
			return err
		}
		if source == nil && store.MinIO != nil {
			source = screening.NewBucketSource(store.MinIO, prefix)
		}
		if store.MySQL != nil {
			opts = append(opts, screening.WithRecorder(store.MySQL))
		}
		if store.RabbitMQ != nil {
			opts = append(opts, screening.WithPublisher(store.RabbitMQ, a.cfg.RabbitMQ.ScreeningExchange, a.cfg.RabbitMQ.ScreenedRouting))
		}
	}
	if source == nil {
		return fmt.Errorf("没有简历来源：请用 --path 指定本地文件，或配置 minio")
	}

	pipeline, err := screening.New(screening.Components{
		Source:   source,
		Uploader: a.resumes,
		Analyzer: a.resumes,
	}, settings, opts...)
	if err != nil {
		return err
	}
	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	if err := a.print(report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("批次 %s 中有 %d/%d 份简历处理失败", report.BatchID, report.Failed, report.Total)
	}
	return nil
}

// print 以缩进的JSON写到标准输出
// writeFile 有 --output 时写入文件，否则直接输出原始内容
func (a *app) writeFile(data []byte) error {
	if a.flags.output == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(a.flags.output, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return a.print(map[string]any{"file": a.flags.output, "bytes": len(data)})
}

func (a *app) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化输出失败: %w", err)
	}
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = a.out.Write(buf.Bytes())
	return err
}
