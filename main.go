package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tacsim/sim"
)

// TacSim 入口：连接仿真服务端，启动传感/打击单元编队，
// 并提供雷达界面与监控接口
func main() {
	var (
		configPath string
		addr       string
		server     string
		delay      float64
		debug      bool
	)
	flag.StringVar(&configPath, "config", "", "yaml config path (optional)")
	flag.StringVar(&addr, "addr", "", "radar/admin listen address, e.g. :8080")
	flag.StringVar(&server, "server", "", "simulation server address, e.g. 127.0.0.1:21234")
	flag.Float64Var(&delay, "delay", -1, "delay before launching strike unit (seconds)")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := sim.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	// 命令行覆盖配置文件
	if addr != "" {
		cfg.RadarAddr = addr
	}
	if server != "" {
		cfg.ServerAddr = server
	}
	if delay >= 0 {
		cfg.StrikeDelaySeconds = delay
	}

	// 使用第三方 zap 日志库写入文件（带滚动）
	if err := sim.InitLogger(cfg.LogFile, debug); err != nil {
		panic(err)
	}
	defer sim.SyncLogger()

	session := sim.NewSession(cfg.ServerAddr, cfg.Token)
	radar := sim.NewRadarHub()
	fleet := sim.NewFleet(session, cfg.BuildTuning(), &sim.FleetMetrics{}, radar)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", radar.HandleWS)
	// 前后端分离：将 / 映射到 web 目录的静态资源
	mux.Handle("/", http.FileServer(http.Dir("web")))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", fleet.HandleAdminConfig)
	mux.HandleFunc("/metrics", fleet.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.RadarAddr, Handler: mux}
	go func() {
		sim.Log.Infof("TacSim radar on %s; open http://localhost%v/", cfg.RadarAddr, cfg.RadarAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sim.Log.Fatalf("listen: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())

	// 优雅退出（Ctrl+C）：取消编队运行，单元停止后再退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		sim.Log.Info("Shutting down...")
		cancel()
	}()

	strikeDelay := time.Duration(cfg.StrikeDelaySeconds * float64(time.Second))
	if err := fleet.Run(ctx, strikeDelay); err != nil && ctx.Err() == nil {
		sim.Log.Errorf("simulation failed: %v", err)
		sim.SyncLogger()
		os.Exit(1)
	}
	_ = srv.Close()
}
