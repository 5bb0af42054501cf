package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"darkops-lab/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every command needs once the root pre-run has finished.
type app struct {
	v      *viper.Viper
	log    *zap.Logger
	client *client.Client
}

// newRootCmd builds the command tree. The returned func releases the client
// and must run after Execute, whether or not the command failed.
func newRootCmd() (*cobra.Command, func()) {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "darkops",
		Short: "DarkOps Lab - learn how cyber attacks unfold, step by step",
		Long: `DarkOps Lab walks through real attack techniques one step at a time,
explains the defenses that stop them and quizzes you on what you learned.

Progress is kept against an anonymous session stored on this machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("backend-url", client.DefaultBaseURL, "DarkOps Lab API base URL")
	flags.String("state-path", "", "client state file (default: user config dir)")
	flags.String("nickname-mode", string(client.NicknameUpdate), "how nickname changes reach the backend: update|recreate")
	flags.Duration("timeout", client.DefaultTimeout, "per-request timeout")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	// e.g., DARKOPS_BACKEND_URL
	a.v.SetEnvPrefix("DARKOPS")
	a.v.AutomaticEnv()
	for _, name := range []string{"backend-url", "state-path", "nickname-mode", "timeout", "verbose"} {
		_ = a.v.BindPFlag(flagKey(name), flags.Lookup(name))
	}

	rootCmd.AddCommand(
		newSessionCmd(a),
		newNicknameCmd(a),
		newAttacksCmd(a),
		newAttackCmd(a),
		newStepCmd(a),
		newQuizCmd(a),
		newDashboardCmd(a),
	)
	return rootCmd, a.close
}

// flagKey maps a flag name onto the viper key matched by its env variable.
func flagKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

func (a *app) init(ctx context.Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.v.GetBool("verbose") {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log

	mode, err := client.ParseNicknameMode(a.v.GetString("nickname_mode"))
	if err != nil {
		return err
	}

	statePath := a.v.GetString("state_path")
	if statePath == "" {
		statePath, err = client.DefaultStatePath()
		if err != nil {
			return err
		}
	}
	store, err := client.NewSQLiteStore(statePath)
	if err != nil {
		return err
	}

	a.client, err = client.New(client.Config{
		BaseURL:      a.v.GetString("backend_url"),
		Timeout:      a.v.GetDuration("timeout"),
		NicknameMode: mode,
	}, store, log)
	if err != nil {
		store.Close()
		return err
	}
	a.log.Debug("Client ready", zap.String("backend", a.client.Config().BaseURL), zap.String("state", statePath))

	// Failure is logged by the manager; commands degrade without a session.
	_, _ = a.client.Sessions.GetOrCreateSession(ctx)
	return nil
}

func (a *app) close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.log.Warn("Failed to close client", zap.Error(err))
		}
		a.client = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, cleanup := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
