package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"resume-insight-go/internal/agent"
	"resume-insight-go/internal/api/handler"
	"resume-insight-go/internal/api/router"
	"resume-insight-go/internal/config"
	applogger "resume-insight-go/internal/logger"
	"resume-insight-go/internal/parser"
	"resume-insight-go/internal/processor"
	"resume-insight-go/internal/storage"
	"resume-insight-go/internal/tracing"
)

func main() {
	// .env 仅用于本地开发，文件不存在不报错
	_ = godotenv.Load()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	// 提示词配置不合法时直接启动失败，不等到处理请求才暴露
	prompts, err := config.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		glog.Fatalf("加载提示词配置失败: %v", err)
	}
	glog.Info("提示词配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, &cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	glog.Info("存储服务初始化成功")

	chatModel, err := agent.NewOpenAIChatModel(&cfg.LLM)
	if err != nil {
		glog.Fatalf("初始化聊天模型失败: %v", err)
	}
	glog.Info("聊天模型初始化成功")

	searchTool, err := agent.NewSearchTool(&cfg.Search)
	if err != nil {
		glog.Fatalf("初始化搜索工具失败: %v", err)
	}

	salaryAgent, err := agent.NewSalaryResearchAgent(chatModel, searchTool, prompts.SalaryResearch, cfg.Insights.MaxResearchSteps)
	if err != nil {
		glog.Fatalf("初始化薪资研究agent失败: %v", err)
	}
	glog.Info("薪资研究agent初始化成功")

	textExtractor, err := parser.NewDocumentTextExtractor(ctx)
	if err != nil {
		glog.Fatalf("初始化文本提取器失败: %v", err)
	}

	var objectStore storage.ObjectStorage
	if storageManager.MinIO != nil {
		objectStore = storageManager.MinIO
	}

	extractor, err := processor.NewResumeExtractor(chatModel, textExtractor, storageManager.Artifacts, objectStore, prompts.ResumeExtraction)
	if err != nil {
		glog.Fatalf("初始化简历提取器失败: %v", err)
	}

	scorer, err := processor.NewATSScorer(chatModel, storageManager.Artifacts, prompts.ATSScoring)
	if err != nil {
		glog.Fatalf("初始化ATS评分器失败: %v", err)
	}

	insights, err := processor.NewInsightsService(storageManager.Artifacts, salaryAgent, chatModel, prompts.Upskilling)
	if err != nil {
		glog.Fatalf("初始化洞察服务失败: %v", err)
	}
	glog.Info("处理器初始化成功")

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, extractor, scorer, insights)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, cfg, resumeHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger(cfg *config.Config) {
	applogger.Init(applogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	// Hertz 的日志也走同一个 zerolog 实例
	glog.SetLogger(hertzadapter.From(applogger.Logger))
}
