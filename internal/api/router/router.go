package router

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-insight-go/internal/api/handler"
	"resume-insight-go/internal/config"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, resumeHandler *handler.ResumeHandler) {
	api := h.Group("/api/v1")

	// 配置了服务端密钥时启用 X-API-Key 鉴权，健康检查除外
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	// 批量上传简历文件，multipart 字段名为 files
	api.POST("/resumes", func(c context.Context, ctx *app.RequestContext) {
		form, err := ctx.MultipartForm()
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "解析 multipart 表单失败"})
			return
		}
		files := form.File["files"]
		if len(files) == 0 {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "表单中没有 files 字段"})
			return
		}

		resp := resumeHandler.HandleBatchUpload(c, files)
		ctx.JSON(consts.StatusOK, resp)
	})

	// 读取完整记录，包含已生成的派生产物
	api.GET("/resumes/:id", func(c context.Context, ctx *app.RequestContext) {
		id := ctx.Param("id")
		record, err := resumeHandler.HandleGetRecord(c, id)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, record)
	})

	// 下载归档的原始简历文件
	api.GET("/resumes/:id/original", func(c context.Context, ctx *app.RequestContext) {
		id := ctx.Param("id")
		data, err := resumeHandler.HandleGetOriginal(c, id)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.Data(consts.StatusOK, http.DetectContentType(data), data)
	})

	// ATS 评分
	api.POST("/resumes/:id/score", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ScoreRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "解析请求体失败"})
			return
		}
		if req.JobDescription == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "job_description 不能为空"})
			return
		}

		resp, err := resumeHandler.HandleScore(c, ctx.Param("id"), &req)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 薪资洞察
	api.POST("/resumes/:id/salary", func(c context.Context, ctx *app.RequestContext) {
		var req handler.SalaryRequest
		if len(ctx.Request.Body()) > 0 {
			if err := ctx.BindJSON(&req); err != nil {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "解析请求体失败"})
				return
			}
		}

		resp, err := resumeHandler.HandleSalary(c, ctx.Param("id"), &req)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 技能提升报告
	api.POST("/resumes/:id/upskilling", func(c context.Context, ctx *app.RequestContext) {
		var req handler.UpskillingRequest
		if len(ctx.Request.Body()) > 0 {
			if err := ctx.BindJSON(&req); err != nil {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "解析请求体失败"})
				return
			}
		}

		resp, err := resumeHandler.HandleUpskilling(c, ctx.Param("id"), &req)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查不走鉴权
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
