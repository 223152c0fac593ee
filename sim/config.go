package sim

import (
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config 进程级配置；yaml 文件加载，缺省值见 DefaultConfig
type Config struct {
	// ServerAddr 仿真服务端地址（host:port）
	ServerAddr string `yaml:"server"`
	// Token bearer 认证令牌；留空则每次启动生成新令牌
	Token string `yaml:"token"`
	// RadarAddr 雷达界面与监控接口监听地址
	RadarAddr string `yaml:"radar_addr"`
	// LogFile 日志文件路径
	LogFile string `yaml:"log_file"`
	// StrikeDelaySeconds 放出打击单元前的延时（秒）
	StrikeDelaySeconds float64 `yaml:"strike_delay_s"`

	Tuning TuningConfig `yaml:"tuning"`
}

// TuningConfig 控制参数的配置文件表示
type TuningConfig struct {
	BroadcastRedundancy int   `yaml:"broadcast_redundancy"`
	ThrustRedundancy    int   `yaml:"thrust_redundancy"`
	FreshnessWindowMs   int64 `yaml:"freshness_window_ms"`
	QueueWaitMs         int64 `yaml:"queue_wait_ms"`
}

// DefaultConfig 缺省配置
func DefaultConfig() Config {
	return Config{
		ServerAddr:         "127.0.0.1:21234",
		RadarAddr:          ":8080",
		LogFile:            "tacsim.log",
		StrikeDelaySeconds: 5,
		Tuning: TuningConfig{
			BroadcastRedundancy: DefaultBroadcastRedundancy,
			ThrustRedundancy:    DefaultThrustRedundancy,
			FreshnessWindowMs:   int64(DefaultFreshnessWindow * 1000),
			QueueWaitMs:         DefaultQueueWaitMs,
		},
	}
}

// LoadConfig 从 yaml 文件加载配置；path 为空时直接用缺省值
// 令牌留空则生成一次性随机令牌（服务端按令牌区分会话，无需预注册）
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	}
	if cfg.Token == "" {
		cfg.Token = uuid.NewString()
	}
	return cfg, nil
}

// BuildTuning 由配置构造运行期控制参数
func (c Config) BuildTuning() *Tuning {
	t := NewTuning()
	if c.Tuning.BroadcastRedundancy > 0 {
		t.SetBroadcastRedundancy(c.Tuning.BroadcastRedundancy)
	}
	if c.Tuning.ThrustRedundancy > 0 {
		t.SetThrustRedundancy(c.Tuning.ThrustRedundancy)
	}
	if c.Tuning.FreshnessWindowMs > 0 {
		t.SetFreshnessWindowMs(c.Tuning.FreshnessWindowMs)
	}
	if c.Tuning.QueueWaitMs > 0 {
		t.SetQueueWaitMs(c.Tuning.QueueWaitMs)
	}
	return t
}
