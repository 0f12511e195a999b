// hrmsctl 人事管理后台的命令行客户端：员工、知识库、简历接口，字典查询，以及批量简历筛选。
// 结果以JSON写到标准输出，日志写到标准错误。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/tracing"
)

var version = "1.0.0" //nolint:gochecknoglobals

type flags struct {
	configPath string
	page       int
	limit      int
	filters    map[string]string
	output     string
	jd         string
	workers    int
	prefix     string
	paths      []string
	candidate  string
	position   string
	lang       string
	refresh    bool
	timeout    string
	showVer    bool
}

func parseFlags(args []string) (*flags, []string, error) {
	f := &flags{}
	fs := pflag.NewFlagSet("hrmsctl", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "配置文件路径")
	fs.IntVar(&f.page, "page", 1, "页码")
	fs.IntVar(&f.limit, "limit", 20, "每页条数")
	fs.StringToStringVarP(&f.filters, "filter", "f", nil, "过滤条件，例如 -f name=张三 -f status=1")
	fs.StringVarP(&f.output, "output", "o", "", "导出文件路径，默认写到标准输出")
	fs.StringVar(&f.jd, "jd", "", "岗位描述，覆盖配置中的 screening.job_description")
	fs.IntVar(&f.workers, "workers", 0, "批量筛选的并发数，覆盖配置")
	fs.StringVar(&f.prefix, "prefix", "", "批量筛选的对象前缀，覆盖配置")
	fs.StringSliceVar(&f.paths, "path", nil, "批量筛选本地文件或目录，指定后不读对象存储")
	fs.StringVar(&f.candidate, "candidate", "", "上传简历时的候选人姓名")
	fs.StringVar(&f.position, "position", "", "上传简历时的应聘岗位")
	fs.StringVar(&f.lang, "lang", "", "界面文案语言，默认使用 api.language")
	fs.BoolVar(&f.refresh, "refresh", false, "字典跳过缓存重新拉取")
	fs.StringVar(&f.timeout, "timeout", "", "整条命令的超时，例如 30s、5m；默认不限制")
	fs.BoolVarP(&f.showVer, "version", "v", false, "显示版本")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: hrmsctl [flags] <command> [args]\n\n%s\n参数:\n", commandHelp)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func main() {
	f, args, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if f.showVer {
		fmt.Println(version)
		return
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "用法: hrmsctl [flags] <command> [args]\n\n%s", commandHelp)
		os.Exit(2)
	}

	if args[0] == "init" {
		path := "config.yaml"
		if len(args) > 1 {
			path = args[1]
		}
		if err := config.CreateSampleConfig(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "已生成示例配置 %s\n", path)
		return
	}

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	logger.BridgeHertz()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := config.GetDuration(f.timeout, 0); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	shutdown, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续执行")
		shutdown = func(context.Context) error { return nil }
	}

	code := 0
	if err := run(ctx, cfg, f, args); err != nil {
		logger.Error().Err(err).Strs("args", args).Msg("命令执行失败")
		code = 1
	}
	if err := shutdown(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("关闭链路追踪失败")
	}
	if code != 0 {
		os.Exit(code)
	}
}
