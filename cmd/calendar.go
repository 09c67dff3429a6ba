package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/leave-request/internal/calendar"
	"github.com/frahmantamala/leave-request/pkg/logger"
	"github.com/spf13/cobra"
)

var testEventSummary string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Calendar integration tools",
}

var calendarTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Create a test event to check the calendar credentials",
	Long:  `Validate SERVICE_ACCOUNT_JSON and CALENDAR_ID, then create a one hour event starting an hour from now.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		setupLogger(cfg)

		calCfg := calendar.ConfigFrom(cfg.Calendar)
		fmt.Println("SERVICE_ACCOUNT_JSON:", calCfg.ServiceAccountFile)
		fmt.Println("CALENDAR_ID:", calCfg.CalendarID)

		ctx := context.Background()
		client, err := calendar.New(ctx, calCfg, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("calendar configuration invalid: %v", err)
		}

		start := time.Now().UTC().Add(time.Hour).Truncate(time.Minute)
		end := start.Add(time.Hour)
		fmt.Printf("Creating %q from %s to %s\n", testEventSummary, start.Format(time.RFC3339), end.Format(time.RFC3339))

		id, err := client.CreateEvent(ctx, testEventSummary, start, end)
		if err != nil {
			log.Fatalf("FAILED: %v", err)
		}
		fmt.Println("OK, event id:", id)
	},
}

func init() {
	calendarTestCmd.Flags().StringVar(&testEventSummary, "summary", "[TEST] Leave request calendar check", "summary of the test event")
	calendarCmd.AddCommand(calendarTestCmd)
}
