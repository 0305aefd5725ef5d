package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/logging"
)

// setupLogging builds the logger from the configuration and the --debug
// flag, and attaches it with a fresh trace ID to the command context.
func setupLogging(cmd *cobra.Command, cfg *config.Config) logging.Result {
	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		logCfg.Level = zerolog.LevelDebugValue
		logCfg.Format = logging.FormatConsole
		logCfg.File = ""
		logCfg.Caller = true
	}

	// Structured output on a pipe unless the user asked for console output explicitly.
	if cfg.Logging.Format == "" && !isTerminal(os.Stderr) {
		logCfg.Format = logging.FormatJSON
	}

	result := logging.NewLogger(logCfg, cmd.ErrOrStderr())
	logger := logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str(logging.TraceIDField, traceID).Str("command", cmd.CommandPath()).Msg("command started")
	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.Result) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
