package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bitleak/lmstfy/client"

	"eightball/variance/common/model"
	"eightball/variance/internal/business"
	"eightball/variance/internal/domains"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/gormstore"
	"eightball/variance/pkg/infra/redis"
	"eightball/variance/pkg/lmstfyx"
	"eightball/variance/pkg/logger"
)

var (
	configPath   = flag.String("config", "./config/worker.yaml", "配置文件路径")
	testcasePath = flag.String("testcase", "./tools/fasttest/testcase/jobs.json", "测试用例路径")
	skipRedis    = flag.Bool("skip-redis", false, "跳过 Redis 完成通知")
)

// 绕过 lmstfy，直接把 Job 交给 GetProcess，回调只打印不入队
func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  FastTest - Variance Worker 快速测试工具")
	fmt.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Invalid config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config loaded: %s\n", cfg.App.Name)

	// 2. 加载测试用例
	jobs, err := loadTestCases(*testcasePath)
	if err != nil {
		fmt.Printf("❌ Failed to load test cases: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d test cases from %s\n", len(jobs), *testcasePath)

	// 3. 初始化依赖
	log, err := logger.NewConsoleLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("❌ Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store, err := gormstore.NewStore(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.AutoMigrate)
	if err != nil {
		fmt.Printf("❌ Failed to create store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	engine, err := business.NewEngine(store, cfg, log)
	if err != nil {
		fmt.Printf("❌ Failed to create engine: %v\n", err)
		os.Exit(1)
	}

	var notifier business.Notifier
	if !*skipRedis && cfg.Redis.Addr != "" {
		pubsub, err := redis.NewPubSub(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			fmt.Printf("❌ Failed to create Redis PubSub: %v\n", err)
			os.Exit(1)
		}
		defer pubsub.Close()
		notifier = pubsub
		fmt.Println("✅ Redis initialized")
	} else {
		fmt.Println("⚠️  Redis notifications disabled")
	}

	svc := business.NewVarianceService(engine, nil, notifier, "", cfg.Engine.NotifyChannel, log)
	proc := domains.GetProcess(log, svc)

	// 4. 执行测试用例
	fmt.Println("\n========================================")
	fmt.Println("  Running Test Cases")
	fmt.Println("========================================")

	successCount := 0
	failureCount := 0

	for i, job := range jobs {
		data := job.Payload.Data
		fmt.Printf("\n[Test %d/%d] action_type=%s, org_id=%s, id=%s\n", i+1, len(jobs), data.ActionType, data.OrgID, data.ID)
		fmt.Println("----------------------------------------")

		startTime := time.Now()
		err := runTestCase(proc, fmt.Sprintf("fasttest-%d", i), job)
		duration := time.Since(startTime)

		if err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
			failureCount++
		} else {
			fmt.Printf("✅ PASSED\n")
			successCount++
		}
		fmt.Printf("⏱️  Duration: %v\n", duration)
	}

	// 5. 输出测试汇总
	fmt.Println("\n========================================")
	fmt.Println("  Test Summary")
	fmt.Println("========================================")
	fmt.Printf("Total: %d\n", len(jobs))
	fmt.Printf("Passed: %d ✅\n", successCount)
	fmt.Printf("Failed: %d ❌\n", failureCount)

	if failureCount > 0 {
		os.Exit(1)
	}
}

// loadTestCases 从 JSON 文件加载测试用例（标准 Job 数组）
func loadTestCases(path string) ([]*model.VarianceJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase file: %w", err)
	}

	var jobs []*model.VarianceJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase: %w", err)
	}

	return jobs, nil
}

// runTestCase 运行单个用例并打印回调
func runTestCase(proc lmstfyx.Proc, jobID string, job *model.VarianceJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	resp := proc(context.Background(), &client.Job{ID: jobID, Queue: "fasttest", Data: raw})
	fmt.Printf("  Action: %s\n", resp.Action)

	var out struct {
		Result struct {
			Callback *model.VarianceCallback `json:"callback"`
		} `json:"result"`
	}
	if len(resp.Data) > 0 && json.Unmarshal(resp.Data, &out) == nil && out.Result.Callback != nil {
		cb := out.Result.Callback
		fmt.Printf("  Status: %s, Results: %d\n", cb.Status, cb.ResultCount)
		if cb.Error != "" {
			fmt.Printf("  Error: %s\n", cb.Error)
		}
	}

	if resp.Action != lmstfyx.JobRespStatusSuccess {
		return fmt.Errorf("job not acknowledged: %s", resp.Action)
	}
	return nil
}
