package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ubiproject-star/okey/common/config"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/common/metrics"
	"github.com/ubiproject-star/okey/game/app"
)

var (
	configFile string
	logLevel   string
	identifier string
)

var rootCmd = &cobra.Command{
	Use:   "okey",
	Short: "okey 四人对局服务",
	Long:  `okey 四人对局服务：发牌与规则校验、回合计时与托管、断线重连`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configFile, identifier); err != nil {
			return err
		}
		conf := config.GameNodeConfig
		level := logLevel
		if !cmd.Flags().Changed("logLevel") && conf.LogConf.Level != "" {
			level = conf.LogConf.Level
		}
		log.InitLog(conf.ID, level)
		log.Info("配置文件: %s, 节点: %s", configFile, conf.ID)

		if conf.MetricPort > 0 {
			go func() {
				log.Info("启动监控..., URL: http://localhost:%d/debug/statsviz/", conf.MetricPort)
				if err := metrics.Serve(fmt.Sprintf("0.0.0.0:%d", conf.MetricPort)); err != nil {
					log.Error("监控服务退出: %v", err)
				}
			}()
		}

		return app.Run(context.Background())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "resource", "resource/application.yml", "resource file")
	rootCmd.Flags().StringVar(&logLevel, "logLevel", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&identifier, "identifier", "", "node identifier, overrides id in the resource file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("发生异常: %v", err)
		os.Exit(1)
	}
}
