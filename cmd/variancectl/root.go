package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eightball/variance/internal/business"
	"eightball/variance/internal/business/variance"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/gormstore"
	"eightball/variance/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configPath string
	verbose    bool
}

// app 命令执行期间打开的依赖
type app struct {
	cfg    *config.Config
	store  *gormstore.Store
	engine *variance.Engine
	log    logger.Logger
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "variancectl",
		Short: "Inventory variance detection operator tool",
		Long:  "variancectl runs variance analysis against the configured store,\nmanages per-organization detection config and enqueues worker jobs.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "./config/apiserver.yaml", "Config file path")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newAnalyzeCmd(flags))
	root.AddCommand(newEnqueueCmd(flags))
	root.AddCommand(newMigrateCmd(flags))
	return root
}

// loadConfig 加载并校验配置文件
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openApp 打开存储并组装引擎
func openApp(flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	log := logger.NewNopLogger()
	if flags.verbose {
		if log, err = logger.NewConsoleLogger(cfg.App.LogLevel); err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	store, err := gormstore.NewStore(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.AutoMigrate)
	if err != nil {
		return nil, err
	}

	engine, err := business.NewEngine(store, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: store, engine: engine, log: log}, nil
}
