package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	translation "github.com/revenuewire/translation"
)

type globalOptions struct {
	dsn          string
	logLevel     string
	logFormat    string
	batchLimit   int
	ohtPublicKey string
	ohtSecretKey string
	ohtSandbox   bool
	ohtTag       string
	ohtExpertise string
	gctAPIKey    string
	gctChunkSize int
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "translation",
		Short:        "Batch translation pipeline over a shared text store",
		Long:         "Manages canonical texts and their translations: diff finds untranslated texts,\nadd submits them to a provider, commit collects asynchronous results, and\npush publishes finished translations back into the store.",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dsn, "db", envString("TRANSLATION_DB", "file:translations.db?_fk=1"), "SQLite DSN for the translation store")
	flags.StringVar(&opts.logLevel, "log-level", envString("TRANSLATION_LOG_LEVEL", "info"), "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", envString("TRANSLATION_LOG_FORMAT", "console"), "Log format (console, json, pretty)")
	flags.IntVar(&opts.batchLimit, "batch-limit", envInt("TRANSLATION_BATCH_LIMIT", 0), "Maximum items per translation project")
	flags.StringVar(&opts.ohtPublicKey, "oht-public-key", os.Getenv("OHT_PUBLIC_KEY"), "OneHourTranslation public key")
	flags.StringVar(&opts.ohtSecretKey, "oht-secret-key", os.Getenv("OHT_SECRET_KEY"), "OneHourTranslation secret key")
	flags.BoolVar(&opts.ohtSandbox, "oht-sandbox", envBool("OHT_SANDBOX"), "Use the OneHourTranslation sandbox")
	flags.StringVar(&opts.ohtTag, "oht-tag", os.Getenv("OHT_TAG"), "Tag applied to OneHourTranslation projects")
	flags.StringVar(&opts.ohtExpertise, "oht-expertise", os.Getenv("OHT_EXPERTISE"), "OneHourTranslation expertise id")
	flags.StringVar(&opts.gctAPIKey, "gct-api-key", os.Getenv("GCT_API_KEY"), "Google Cloud Translation API key")
	flags.IntVar(&opts.gctChunkSize, "gct-chunk-size", envInt("GCT_CHUNK_SIZE", 0), "Texts per Google Cloud Translation request")

	cmd.AddCommand(
		newInitCmd(opts),
		newDiffCmd(opts),
		newAddCmd(opts),
		newStatusCmd(opts),
		newCommitCmd(opts),
		newPushCmd(opts),
	)

	return cmd
}

// buildModule assembles the pipeline from global flags. Misconfiguration
// surfaces here, before any store or vendor call.
func buildModule(ctx context.Context, opts *globalOptions) (*translation.Module, error) {
	cfg := translation.DefaultConfig()
	cfg.Database.DSN = opts.dsn
	cfg.Logging.Level = opts.logLevel
	cfg.Logging.Format = opts.logFormat
	if opts.batchLimit > 0 {
		cfg.BatchLimit = opts.batchLimit
	}
	cfg.Providers.OHT = translation.OHTConfig{
		PublicKey: opts.ohtPublicKey,
		SecretKey: opts.ohtSecretKey,
		Sandbox:   opts.ohtSandbox,
		Tag:       opts.ohtTag,
		Expertise: opts.ohtExpertise,
	}
	cfg.Providers.GCT = translation.GCTConfig{
		APIKey:    opts.gctAPIKey,
		ChunkSize: opts.gctChunkSize,
	}
	return translation.New(ctx, cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
