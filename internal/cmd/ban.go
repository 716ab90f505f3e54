package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/leighmacdonald/mcbans/internal/config"
	"github.com/leighmacdonald/mcbans/internal/database"
	"github.com/leighmacdonald/mcbans/internal/punishment"
	"github.com/leighmacdonald/mcbans/pkg/datetime"
	"github.com/leighmacdonald/mcbans/pkg/log"
	"github.com/spf13/cobra"
)

const cliStoreTimeout = time.Second * 15

// connectPunishments builds a punishment usecase over a live db connection
// for the one-shot CLI commands.
func connectPunishments(ctx context.Context) (*punishment.Usecase, database.Database, error) {
	conf, errConfig := config.Read(cfgFile)
	if errConfig != nil {
		return nil, nil, errConfig
	}

	dbConn := database.New(conf.DB.DSN, conf.DB.AutoMigrate, conf.DB.LogQueries)
	if errConnect := dbConn.Connect(ctx); errConnect != nil {
		return nil, nil, errConnect
	}

	return punishment.NewUsecase(punishment.NewRepository(dbConn)), dbConn, nil
}

// issueArgs parses the shared "<name> [duration] <reason...>" argument shape.
// When the second argument parses as a duration the temporary kind is used.
func issueArgs(args []string, permanent punishment.Kind, temporary punishment.Kind) punishment.Opts {
	opts := punishment.Opts{
		PlayerName: args[0],
		Kind:       permanent,
		Operator:   "Console",
	}

	reasonWords := args[1:]

	if len(args) >= 3 {
		if duration, errDuration := datetime.ParseDuration(args[1]); errDuration == nil && duration > 0 {
			opts.Kind = temporary
			opts.Duration = duration
			reasonWords = args[2:]
		}
	}

	opts.Reason = strings.Join(reasonWords, " ")

	return opts
}

func runIssue(cmd *cobra.Command, args []string, silent bool, permanent punishment.Kind, temporary punishment.Kind) {
	ctx, cancel := context.WithTimeout(cmd.Context(), cliStoreTimeout)
	defer cancel()

	opts := issueArgs(args, permanent, temporary)
	opts.Silent = silent

	punishments, dbConn, errConnect := connectPunishments(ctx)
	if errConnect != nil {
		slog.Error("Failed to setup db connection", log.ErrAttr(errConnect))
		os.Exit(1)
	}

	defer log.Closer(dbConn)

	record, errIssue := punishments.Issue(ctx, opts)
	if errIssue != nil {
		slog.Error("Could not create punishment", log.ErrAttr(errIssue))
		os.Exit(1)
	}

	if !record.Silent {
		fmt.Println(record.BroadcastText()) //nolint:forbidigo
	}
}

func runRevoke(cmd *cobra.Command, playerName string, group punishment.Group) {
	ctx, cancel := context.WithTimeout(cmd.Context(), cliStoreTimeout)
	defer cancel()

	punishments, dbConn, errConnect := connectPunishments(ctx)
	if errConnect != nil {
		slog.Error("Failed to setup db connection", log.ErrAttr(errConnect))
		os.Exit(1)
	}

	defer log.Closer(dbConn)

	revoked, errRevoke := punishments.Revoke(ctx, playerName, group)
	if errRevoke != nil {
		slog.Error("Could not revoke punishments", log.ErrAttr(errRevoke))
		os.Exit(1)
	}

	if revoked == 0 {
		slog.Warn("Nothing to revoke",
			slog.String("player", playerName), slog.String("group", group.String()))

		return
	}

	slog.Info("Revoked punishments",
		slog.String("player", playerName),
		slog.String("group", group.String()),
		slog.Int64("count", revoked))
}

func banCmd() *cobra.Command {
	var silent = false

	cmd := &cobra.Command{
		Use:   "ban <name> [duration] <reason...>",
		Short: "Ban a player, permanently or with a duration like 7d or #30d",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runIssue(cmd, args, silent, punishment.Ban, punishment.TempBan)
		},
	}

	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Do not emit the broadcast message")

	return cmd
}

func muteCmd() *cobra.Command {
	var silent = false

	cmd := &cobra.Command{
		Use:   "mute <name> [duration] <reason...>",
		Short: "Mute a player, permanently or with a duration like 12h",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runIssue(cmd, args, silent, punishment.Mute, punishment.TempMute)
		},
	}

	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Do not emit the broadcast message")

	return cmd
}

func unbanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unban <name>",
		Short: "Revoke all live bans for a player",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runRevoke(cmd, args[0], punishment.GroupBan)
		},
	}
}

func unmuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unmute <name>",
		Short: "Revoke all live mutes for a player",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runRevoke(cmd, args[0], punishment.GroupMute)
		},
	}
}
