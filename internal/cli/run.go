package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/engine"
)

var (
	runWorkdir   string
	runTimeoutMs int
	runEnv       []string
	runShell     bool
	runStream    bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command...>",
	Short: "Execute a command through the gate",
	Long: `Execute a command through validation, timeout enforcement and history
recording. With --stream, output is printed as it is produced instead of
after completion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(false)
		if err != nil {
			return err
		}
		defer services.Close()

		env, err := parseEnvFlags(runEnv)
		if err != nil {
			return err
		}

		req := domain.ExecutionRequest{
			Command:   strings.Join(args, " "),
			Workdir:   runWorkdir,
			TimeoutMs: runTimeoutMs,
			Env:       env,
			Shell:     runShell,
		}

		if runStream {
			return runStreaming(cmd.Context(), services, req)
		}
		return runBuffered(cmd.Context(), services, req)
	},
}

func runBuffered(ctx context.Context, services *Services, req domain.ExecutionRequest) error {
	result, err := services.ExecutionService.Run(ctx, req)
	if err != nil {
		return err
	}

	if result.Stdout != "" {
		fmt.Println(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintln(os.Stderr, result.Stderr)
	}

	fmt.Printf("exit code: %d\n", result.ExitCode)
	fmt.Printf("duration:  %dms\n", result.DurationMs)
	if result.Killed {
		fmt.Println("killed by timeout")
	}

	return nil
}

func runStreaming(ctx context.Context, services *Services, req domain.ExecutionRequest) error {
	handler := engine.StreamHandler{
		OnStdout: func(chunk string) { fmt.Print(chunk) },
		OnStderr: func(chunk string) { fmt.Fprint(os.Stderr, chunk) },
		OnExit:   func(code int) { fmt.Printf("\nexit code: %d\n", code) },
	}

	result, err := services.ExecutionService.RunStream(ctx, req, handler)
	if err != nil {
		return err
	}

	if result.Killed {
		fmt.Println("killed by timeout")
	}
	return nil
}

// parseEnvFlags turns repeated KEY=VALUE flags into a map.
func parseEnvFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid env flag %q, expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runWorkdir, "workdir", "", "working directory (default from config)")
	runCmd.Flags().IntVar(&runTimeoutMs, "timeout-ms", 0, "timeout in milliseconds (default from config)")
	runCmd.Flags().StringArrayVar(&runEnv, "env", nil, "environment override, KEY=VALUE (repeatable)")
	runCmd.Flags().BoolVar(&runShell, "shell", false, "run the command through /bin/sh -c")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "stream output as it is produced")
}
