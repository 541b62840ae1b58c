package devops

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"

	"puntocheck.com/puntocheck/utils"
)

type JobOverride struct {
	Name            string `yaml:"name" validate:"required"`
	IntervalMinutes int    `yaml:"intervalMinutes" validate:"gt=0"`
}

type ScheduleDefaults struct {
	EntryTime        string `yaml:"entryTime" validate:"required"`
	ExitTime         string `yaml:"exitTime" validate:"required"`
	ToleranceMinutes int    `yaml:"toleranceMinutes" validate:"gte=0"`
	WorkDays         string `yaml:"workDays" validate:"required"`
}

type Config struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections" validate:"gte=1"`
	ListenAddr     string `yaml:"listenAddr" validate:"required"`

	EnableBackgroundJobs  bool `yaml:"enableBackgroundJobs"`
	RejectInvalidLocation bool `yaml:"rejectInvalidLocation"`
	RetentionDays         int  `yaml:"retentionDays" validate:"gte=1"`
	JobWorkers            int  `yaml:"jobWorkers" validate:"gte=1"`

	MediaBucket  string `yaml:"mediaBucket"`
	ReportBucket string `yaml:"reportBucket"`

	ReportEmailFrom string   `yaml:"reportEmailFrom" validate:"omitempty,email"`
	ReportEmailTo   []string `yaml:"reportEmailTo" validate:"dive,email"`

	Jobs            []JobOverride    `yaml:"jobs" validate:"dive"`
	DefaultSchedule ScheduleDefaults `yaml:"defaultSchedule"`
}

var (
	once    sync.Once
	loaded  *Config
	loadErr error
)

func defaults() *Config {
	return &Config{
		MaxConnections:       10,
		ListenAddr:           "0.0.0.0:8090",
		EnableBackgroundJobs: true,
		RetentionDays:        90,
		JobWorkers:           4,
		DefaultSchedule: ScheduleDefaults{
			EntryTime:        "09:00",
			ExitTime:         "18:00",
			ToleranceMinutes: 10,
			WorkDays:         "1,2,3,4,5",
		},
	}
}

// Load reads the configuration once. Sources, in order: the SSM parameter
// named by PUNTOCHECK_CONFIG_PARAM, the file named by PUNTOCHECK_CONFIG_FILE,
// else hard-coded defaults. Malformed schedule time strings are fatal here,
// never a per-event failure later.
func Load(ctx context.Context) (*Config, error) {
	once.Do(func() {
		cfg := defaults()

		raw, err := fetchRaw(ctx)
		if err != nil {
			loadErr = err
			return
		}
		if raw != nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				loadErr = fmt.Errorf("unmarshal yaml: %w", err)
				return
			}
		}

		if err := validate(cfg); err != nil {
			loadErr = err
			return
		}
		loaded = cfg
	})

	return loaded, loadErr
}

func fetchRaw(ctx context.Context) ([]byte, error) {
	if param := os.Getenv("PUNTOCHECK_CONFIG_PARAM"); param != "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := ssm.NewFromConfig(cfg)
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(param),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("get parameter %s: %w", param, err)
		}
		return []byte(*out.Parameter.Value), nil
	}

	if path := os.Getenv("PUNTOCHECK_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		return raw, nil
	}

	return nil, nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := utils.ParseClockTime(cfg.DefaultSchedule.EntryTime); err != nil {
		return fmt.Errorf("defaultSchedule.entryTime: %w", err)
	}
	if _, err := utils.ParseClockTime(cfg.DefaultSchedule.ExitTime); err != nil {
		return fmt.Errorf("defaultSchedule.exitTime: %w", err)
	}
	return nil
}

// JobOverrides converts the configured per-job interval overrides into the
// form the scheduler registration takes.
func (c *Config) JobOverrides() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.Jobs))
	for _, j := range c.Jobs {
		out[j.Name] = time.Duration(j.IntervalMinutes) * time.Minute
	}
	return out
}
