package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/internal/server"
	"github.com/shashiranjanraj/rigparts/pkg/queue"
	"github.com/shashiranjanraj/rigparts/pkg/schedule"
)

var queueWorkersFlag int

// rigparts queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if config.QueueDriver() != "redis" {
			fmt.Println("⚠  QUEUE_DRIVER is not redis: this worker only sees jobs dispatched in its own process.")
		}

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}

		fmt.Printf("🚀 Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		wg := queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		wg.Wait()
		fmt.Println("\n⚡ Queue worker stopped.")
		return nil
	},
}

// rigparts schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Start the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Println("Registered scheduled tasks:")
		for _, t := range schedule.List() {
			fmt.Println("  •", t)
		}

		fmt.Println("🕐 Scheduler started. Press Ctrl+C to stop.")
		schedule.Run(ctx)

		fmt.Println("\n⚡ Scheduler stopped.")
		return nil
	},
}

// rigparts campaign:send <id>
var campaignSendCmd = &cobra.Command{
	Use:   "campaign:send <id>",
	Short: "Send a campaign now and print the delivery report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid campaign id %q", args[0])
		}

		app, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.Campaigns.Send(cmd.Context(), uint(id))
		if report != nil {
			fmt.Printf("Recipients: %d  Delivered: %d  Failed: %d\n",
				report.Recipients, report.Delivered, len(report.Failed))
			for _, f := range report.Failed {
				fmt.Printf("  ✗ %s: %s\n", f.Email, f.Error)
			}
		}
		if errors.Is(err, services.ErrNoRecipients) {
			fmt.Println("No subscribed customers; nothing sent.")
			return nil
		}
		return err
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
}
