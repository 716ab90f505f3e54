package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leighmacdonald/mcbans/internal/config"
	"github.com/leighmacdonald/mcbans/internal/database"
	"github.com/leighmacdonald/mcbans/internal/report"
	"github.com/leighmacdonald/mcbans/pkg/log"
	"github.com/spf13/cobra"
)

func connectReports(ctx context.Context) (*report.Workflow, database.Database, error) {
	conf, errConfig := config.Read(cfgFile)
	if errConfig != nil {
		return nil, nil, errConfig
	}

	dbConn := database.New(conf.DB.DSN, conf.DB.AutoMigrate, conf.DB.LogQueries)
	if errConnect := dbConn.Connect(ctx); errConnect != nil {
		return nil, nil, errConnect
	}

	return report.NewWorkflow(report.NewRepository(dbConn)), dbConn, nil
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Pending report queue functions",
	}
}

func reportListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the newest pending reports",
		Run: func(cmd *cobra.Command, _ []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), cliStoreTimeout)
			defer cancel()

			reports, dbConn, errConnect := connectReports(ctx)
			if errConnect != nil {
				slog.Error("Failed to setup db connection", log.ErrAttr(errConnect))
				os.Exit(1)
			}

			defer log.Closer(dbConn)

			pending, errPending := reports.Pending(ctx)
			if errPending != nil {
				slog.Error("Could not fetch pending reports", log.ErrAttr(errPending))
				os.Exit(1)
			}

			for _, record := range pending {
				fmt.Printf("#%d %s reported %s for %s (%s)\n", //nolint:forbidigo
					record.ReportID, record.Reporter, record.Reported,
					record.Reason, record.CreatedOn.Format("2006-01-02 15:04"))
			}

			if len(pending) == 0 {
				fmt.Println("No pending reports") //nolint:forbidigo
			}
		},
	}
}

func reportAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <reporter> <reported>",
		Short: "Accept all pending reports matching the reporter/reported pair",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), cliStoreTimeout)
			defer cancel()

			reports, dbConn, errConnect := connectReports(ctx)
			if errConnect != nil {
				slog.Error("Failed to setup db connection", log.ErrAttr(errConnect))
				os.Exit(1)
			}

			defer log.Closer(dbConn)

			accepted, errAccept := reports.Accept(ctx, args[0], args[1])
			if errAccept != nil {
				slog.Error("Could not accept reports", log.ErrAttr(errAccept))
				os.Exit(1)
			}

			if accepted == 0 {
				slog.Warn("No pending report matched",
					slog.String("reporter", args[0]), slog.String("reported", args[1]))

				return
			}

			slog.Info("Reports accepted", slog.Int64("count", accepted))
		},
	}
}
