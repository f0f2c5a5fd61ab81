package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"eightball/variance/common/model"
	"eightball/variance/pkg/config"
	"eightball/variance/pkg/infra/redis"
	"eightball/variance/pkg/lmstfy"
)

type enqueueOutput struct {
	JobID        string                      `json:"job_id"`
	RequestID    string                      `json:"request_id"`
	Queue        string                      `json:"queue"`
	Notification *model.VarianceNotification `json:"notification,omitempty"`
}

var enqueueActions = map[string]string{
	"unit":   model.ActionAnalyzeUnit,
	"org":    model.ActionAnalyzeOrg,
	"brands": model.ActionAnalyzeBrand,
}

func newEnqueueCmd(flags *rootFlags) *cobra.Command {
	var (
		orgID   string
		unitID  string
		actorID string
		queue   string
		wait    time.Duration
	)

	cmd := &cobra.Command{
		Use:       "enqueue unit|org|brands",
		Short:     "Publish an analysis job for the worker",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"unit", "org", "brands"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := enqueueActions[args[0]]
			if action == model.ActionAnalyzeUnit && unitID == "" {
				return fmt.Errorf("--unit is required for unit jobs")
			}

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if queue == "" {
				if len(cfg.Workers) == 0 {
					return fmt.Errorf("no worker queue configured, pass --queue")
				}
				queue = cfg.Workers[0].QueueName
			}

			client, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
			if err != nil {
				return err
			}

			// --wait 时先订阅完成通知，再发布任务
			ctx := cmd.Context()
			var sub *goredis.PubSub
			if wait > 0 {
				if cfg.Redis.Addr == "" {
					return fmt.Errorf("--wait requires redis.addr")
				}
				pubsub, err := redis.NewPubSub(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
				if err != nil {
					return err
				}
				defer pubsub.Close()

				sub = pubsub.Subscribe(ctx, fmt.Sprintf("%s:%s", cfg.Engine.NotifyChannel, orgID))
				defer sub.Close()
				if _, err := sub.Receive(ctx); err != nil {
					return fmt.Errorf("subscribe notifications: %w", err)
				}
			}

			requestID := uuid.NewString()
			job := model.NewVarianceJob(requestID, orgID, action, model.VarianceBusinessData{
				UnitID:  unitID,
				ActorID: actorID,
			})
			jobID, err := client.PublishJSON(queue, job)
			if err != nil {
				return err
			}
			out := enqueueOutput{JobID: jobID, RequestID: requestID, Queue: queue}

			if sub != nil {
				waitCtx, cancel := context.WithTimeout(ctx, wait)
				defer cancel()
				notification, err := redis.WaitVarianceComplete(waitCtx, sub, requestID)
				if err != nil {
					// 超时不影响任务本身，结果稍后仍会通过回调队列送达
					fmt.Fprintf(cmd.ErrOrStderr(), "no completion within %s: %v\n", wait, err)
				}
				out.Notification = notification
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&orgID, "org", "", "Organization ID (required)")
	f.StringVar(&unitID, "unit", "", "Unit ID for unit jobs")
	f.StringVar(&actorID, "actor", "", "Actor ID")
	f.StringVar(&queue, "queue", "", "Queue name, defaults to the first worker queue")
	f.DurationVar(&wait, "wait", 0, "Wait for the completion notification, 0 returns immediately")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
