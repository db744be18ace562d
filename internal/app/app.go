package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/wuliu-next/internal/config"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/provider"
	"github.com/wuliu-next/internal/router"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return opts
}

// Run 应用启动入口：初始化容器与路由，运行 HTTP 服务直至收到退出信号
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	container := provider.NewContainer(opts.Config)
	if _, err := container.SettingService.EnsureDefaults(); err != nil {
		return fmt.Errorf("初始化系统设置失败: %w", err)
	}
	engine := router.SetupRouter(opts.Config, container)
	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	httpService := NewHTTPService(addr, engine)

	opts.Logger.Infow("app_start", "addr", addr)
	return run(httpService, opts)
}

func run(service *HTTPService, opts Options) error {
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	errCh := make(chan error, 1)
	go func() {
		opts.Logger.Infow("service_start", "service", service.Name())
		errCh <- service.Start(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case err := <-errCh:
		runErr = err
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer stopCancel()
	if err := service.Stop(stopCtx); err != nil {
		opts.Logger.Errorw("service_stop_failed", "service", service.Name(), "error", err)
	}
	opts.Logger.Infow("service_exit", "service", service.Name())

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
