package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	middlewareLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appapi "github.com/yockii/notion_blog/internal/api_app"
	sysapi "github.com/yockii/notion_blog/internal/api_sys"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/middleware"
	"github.com/yockii/notion_blog/internal/preview"
	"github.com/yockii/notion_blog/internal/service"
	"github.com/yockii/notion_blog/pkg/blockrender"
	"github.com/yockii/notion_blog/pkg/config"
	"github.com/yockii/notion_blog/pkg/database"
	"github.com/yockii/notion_blog/pkg/logger"
)

type Server struct {
	app    *fiber.App
	ctx    context.Context
	cancel context.CancelFunc

	// 各个service
	postSrv   service.PostService
	renderSrv service.RenderService
}

func New() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// Setup 创建Fiber实例并完成服务、中间件、路由的配置
func (s *Server) Setup() *fiber.App {
	s.app = fiber.New(fiber.Config{
		AppName:               config.GetString("server.app_name"),
		EnablePrintRoutes:     config.GetBool("server.print_routes"),
		DisableStartupMessage: true,
		BodyLimit:             config.GetInt("server.body_limit"),
		ErrorHandler:          errorHandler,
	})

	s.setupServices()

	// 配置中间件
	s.setupMiddleware()

	// 配置路由
	s.setupSystemRoutesV1()
	s.setupApplicationRoutesV1()
	return s.app
}

// errorHandler 未被处理器消化的错误（含panic）统一返回响应信封
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(&service.Response{Code: fe.Code, Message: fe.Message})
	}
	logger.Error("请求处理失败", logger.F("path", c.Path()), logger.F("error", err))
	return c.Status(fiber.StatusInternalServerError).JSON(service.Error(constant.ErrInternalError))
}

func (s *Server) Start() error {
	s.Setup()

	addr := config.GetServerAddress()
	logger.Info("服务监听地址", logger.F("address", addr))

	// 优雅关闭
	go s.gracefulShutdown()

	if err := s.app.Listen(addr); err != nil {
		logger.Error("服务停止", logger.F("error", err))
		return err
	}
	return nil
}

func (s *Server) gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务关闭中...")
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		logger.Error("服务关闭失败", logger.F("error", err))
	}

	logger.Info("服务已关闭")
}

// setupServices 配置服务层
func (s *Server) setupServices() {
	postSrv := service.NewPostService(database.GetDB())
	s.postSrv = postSrv

	var fetcher preview.Fetcher
	if endpoint := config.GetString("preview.endpoint"); endpoint != "" {
		client := preview.NewClient(endpoint, config.GetSeconds("preview.timeout"))
		fetcher = preview.NewCachedFetcher(client, preview.NewRedisClient(), config.GetSeconds("preview.cache_ttl"))
	} else {
		logger.Info("未配置preview.endpoint，书签使用兜底预览")
	}

	renderer := blockrender.New(blockrender.WithMaxDepth(config.GetInt("render.max_depth")))
	s.renderSrv = service.NewRenderService(postSrv, renderer, fetcher, config.GetInt("preview.concurrency"))
}

// setupMiddleware 配置中间件
func (s *Server) setupMiddleware() {
	// 异常恢复
	s.app.Use(recover.New())

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetString("security.allowed_origins"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))

	// 访问日志
	s.app.Use(middlewareLogger.New(middlewareLogger.Config{
		Format:     "[${ip}]-${time} ${status} ${latency} ${method} ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))
}

// setupSystemRoutesV1 管理接口
func (s *Server) setupSystemRoutesV1() {
	sysapi.Handlers = nil
	sysapi.RegisterPostHandler(s.postSrv)

	sysAuthMiddleware := middleware.NewSysAuthMiddleware(config.GetString("security.api_key"))
	apiGroup := s.app.Group("/sys_api/v1")
	for _, handler := range sysapi.Handlers {
		handler.RegisterRoutes(apiGroup, sysAuthMiddleware)
	}

	// 健康检查
	s.app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(c.UserContext()); err != nil {
			logger.Error("数据库不可用", logger.F("error", err))
			return c.Status(fiber.StatusServiceUnavailable).SendString("DB UNAVAILABLE")
		}
		return c.SendString("OK")
	})
}

// setupApplicationRoutesV1 公开接口
func (s *Server) setupApplicationRoutesV1() {
	appapi.Handlers = nil
	appapi.RegisterRenderHandler(s.renderSrv)
	appapi.RegisterPostHandler(s.postSrv, s.renderSrv)

	var handlers []fiber.Handler
	if config.GetBool("rate_limit.enabled") {
		limiter := middleware.NewRateLimiter(config.GetInt("rate_limit.max_requests"), config.GetSeconds("rate_limit.duration"))
		limiter.StartCleanup(s.ctx, config.GetSeconds("rate_limit.duration"))
		handlers = append(handlers, limiter.Handler())
	}
	appApiGroup := s.app.Group("/api/v1", handlers...)
	for _, handler := range appapi.Handlers {
		handler.RegisterRoutes(appApiGroup)
	}
}

// Shutdown 停止后台任务并关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
