package app

import (
	"context"
	"errors"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ubiproject-star/okey/common/config"
	"github.com/ubiproject-star/okey/common/http"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/container"
	"github.com/ubiproject-star/okey/game/interfaces/api"
	grpcserver "github.com/ubiproject-star/okey/game/interfaces/grpc"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

func Run(ctx context.Context) error {
	conf := config.GameNodeConfig
	gameContainer, err := container.NewGameContainer(conf)
	if err != nil {
		log.Error("game 容器初始化失败: %v", err)
		return err
	}
	defer func() {
		if err := gameContainer.Close(); err != nil {
			log.Error("关闭 game 容器失败: %v", err)
		}
	}()

	if err := gameContainer.GameWorker.Start(conf.NatsConfig.URL); err != nil {
		return err
	}

	// http：身份签发、房间概览、websocket 升级
	server := http.NewHttpServer(
		http.WithPort(conf.HttpConf.Port),
		http.WithMode(conf.HttpConf.Mode),
	)
	server.Use(http.RequestIDMiddleware(), http.LoggerMiddleware())
	api.RegisterRoutes(server, &api.Handlers{
		Rooms:    gameContainer.GameWorker,
		Secret:   conf.JwtConf.Secret,
		TokenTTL: time.Duration(conf.JwtConf.Expire) * time.Hour,
	}, gameContainer.ConnWorker)

	go func() {
		log.Info("启动 HTTP 服务器，端口: %d", conf.HttpConf.Port)
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatal("HTTP 服务器启动失败: %v", err)
		}
	}()

	// grpc：外部撮合直接开局，未配置地址时不监听
	var grpcSrv *grpc.Server
	if conf.GrpcConf.Addr != "" {
		lis, err := net.Listen("tcp", conf.GrpcConf.Addr)
		if err != nil {
			log.Error("监听 gRPC 地址失败: %v", err)
			return err
		}
		grpcSrv = grpc.NewServer()
		grpcserver.RegisterGameServer(grpcSrv, grpcserver.NewGameServer(gameContainer.GameService))
		go func() {
			log.Info("game gRPC 服务启动, addr=%s", conf.GrpcConf.Addr)
			if serveErr := grpcSrv.Serve(lis); serveErr != nil {
				log.Error("game gRPC 服务退出: %v", serveErr)
			}
		}()
	}

	stop := func() {
		log.Info("正在关闭 game 服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP 服务器关闭失败: %v", err)
			}
			if grpcSrv != nil {
				grpcSrv.GracefulStop()
			}
			if err := gameContainer.Close(); err != nil {
				log.Warn("关闭 game 容器失败: %v", err)
			}
			close(done)
		}()

		select {
		case <-done:
			log.Info("game 服务已关闭")
		case <-shutdownCtx.Done():
			log.Warn("关闭 game 服务超时（5秒），defer 会确保资源最终被释放")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(c)
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				stop()
				log.Info("中断信号，服务停止")
				return nil
			case syscall.SIGHUP:
				stop()
				log.Info("挂起信号，服务停止")
				return nil
			default:
				return nil
			}
		}
	}
}
