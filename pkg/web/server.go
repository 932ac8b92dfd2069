package web

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/lk2023060901/pigfarm/pkg/web/middleware"
)

// Server 基于 gin 的 HTTP 服务，实现 app.Server
type Server struct {
	engine *gin.Engine
	config *Config
	logger logger.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// Option 服务选项
type Option func(*serverOptions)

type serverOptions struct {
	logger      logger.Logger
	middlewares []gin.HandlerFunc
}

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// WithMiddleware 追加中间件，位于日志与恢复中间件之后
func WithMiddleware(m ...gin.HandlerFunc) Option {
	return func(o *serverOptions) { o.middlewares = append(o.middlewares, m...) }
}

// NewServer 创建 Web 服务
func NewServer(cfg *Config, opts ...Option) (*Server, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge web config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	o := &serverOptions{}
	for _, opt := range opts {
		opt(o)
	}
	l := logger.OrDefault(o.logger).Named("web.server")

	gin.SetMode(newCfg.Mode)
	engine := gin.New()
	engine.Use(middleware.Logger(l, newCfg.SkipLogPaths...))
	engine.Use(middleware.Recovery(l))
	engine.Use(o.middlewares...)

	return &Server{engine: engine, config: newCfg, logger: l}, nil
}

// Router 返回 Gin 引擎，用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr 返回实际监听地址，未启动时为配置地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Start 监听端口并在后台提供服务
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return ErrServerAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.config.Addr)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	s.done = make(chan struct{})

	s.logger.Info("starting http server", "addr", ln.Addr().String())
	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
		}
	}(s.server, s.done)

	return nil
}

// Stop 优雅关闭
func (s *Server) Stop() error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	<-done
	s.logger.Info("http server exited")
	return nil
}
