package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/JANE7J/DreamBalance-v2/internal/account"
	"github.com/JANE7J/DreamBalance-v2/internal/analytics"
	"github.com/JANE7J/DreamBalance-v2/internal/api"
	"github.com/JANE7J/DreamBalance-v2/internal/auth"
	"github.com/JANE7J/DreamBalance-v2/internal/classifier"
	"github.com/JANE7J/DreamBalance-v2/internal/config"
	"github.com/JANE7J/DreamBalance-v2/internal/domain"
	"github.com/JANE7J/DreamBalance-v2/internal/journal"
	"github.com/JANE7J/DreamBalance-v2/internal/logging"
	"github.com/JANE7J/DreamBalance-v2/internal/metrics"
	"github.com/JANE7J/DreamBalance-v2/internal/store"
)

var (
	dbPath  string
	envFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dreambalance",
		Short:        "Dream journal backend with weekly emotional analytics",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides DREAMBALANCE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(insightCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func getStore(cfg *config.Config) (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.DBPath)
}

// emotioner returns the configured classifier, or nil when none is set
func emotioner(cfg *config.Config, logger zerolog.Logger) (classifier.Emotioner, error) {
	c, err := classifier.New(cfg.ClassifierURL, cfg.ClassifierToken, cfg.ClassifierTimeout)
	if errors.Is(err, classifier.ErrNotConfigured) {
		logger.Info().Msg("emotion classifier not configured, entries will not be classified")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			logger := logging.New(cfg.LogLevel, cfg.LogPretty)

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			emo, err := emotioner(cfg, logger)
			if err != nil {
				return err
			}

			m := metrics.New()
			tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

			server := api.New(api.Deps{
				Journal:   journal.NewService(s, emo),
				Accounts:  account.NewService(s, tokens),
				Analytics: analytics.NewService(s, m),
				Tokens:    tokens,
				Metrics:   m,
				Limiter:   api.NewRateLimiter(cfg.AuthRate, cfg.AuthBurst),
				Logger:    logger,
			}, cfg.Addr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides DREAMBALANCE_ADDR)")
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	var username, email, password, gender string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
				return errors.New("--username, --email and --password are required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			u := &domain.User{
				Username:     strings.TrimSpace(username),
				Email:        strings.ToLower(strings.TrimSpace(email)),
				PasswordHash: hash,
				Gender:       gender,
			}
			if err := s.CreateUser(cmd.Context(), u); err != nil {
				return err
			}

			fmt.Printf("Created user %d (%s)\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&gender, "gender", "", "optional gender")
	return cmd
}

func addCmd() *cobra.Command {
	var userID int64
	var date, mood string

	cmd := &cobra.Command{
		Use:   "add [dream text]",
		Short: "Add a journal entry for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, true)

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			emo, err := emotioner(cfg, logger)
			if err != nil {
				return err
			}

			if date == "" {
				date = time.Now().Format(domain.DateLayout)
			}

			ctx := logger.WithContext(cmd.Context())
			entry, err := journal.NewService(s, emo).Create(ctx, userID, journal.EntryInput{
				EntryDate:   date,
				Description: strings.Join(args, " "),
				Mood:        mood,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added entry %d: %s\n", entry.ID, entry.AutoTitle)
			fmt.Printf("Emotion: %s\n", displayEmotion(entry.DominantEmotion))
			for _, e := range entry.Emotions {
				fmt.Printf("  %-10s %.2f\n", e.Label, e.Score)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "owner user id")
	cmd.Flags().StringVar(&date, "date", "", "entry date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&mood, "mood", "", "feeling after waking")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func listCmd() *cobra.Command {
	var userID int64
	var year, month int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's entries for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}

			entries, err := journal.NewService(s, nil).ListMonth(cmd.Context(), userID, year, month)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries this month. Use 'dreambalance add' to create one.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %-5d %-12s %s\n", e.EntryDate, e.ID, displayEmotion(e.DominantEmotion), truncate(e.AutoTitle, 50))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "owner user id")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "calendar month 1-12 (default current)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func insightCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Print a user's weekly analytics report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := analytics.NewService(s, nil).WeeklyReport(cmd.Context(), userID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "owner user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func displayEmotion(label string) string {
	if label == "" {
		return "-"
	}
	return label
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
