package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/care-portal/internal/config"
	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository/postgres"
	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/internal/service/account"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/metrics"
	"github.com/jwalitptl/care-portal/pkg/security"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Care portal operations tool",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yml>",
		Short: "Load accounts and prescriptions from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			fixture, err := account.LoadFixture(f)
			if err != nil {
				return err
			}

			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				if err := postgres.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			}

			log := logger.NewLogger(&logger.Config{
				Level:      logger.ParseLevel(cfg.Logging.Level),
				TimeFormat: time.RFC3339,
				Output:     cmd.ErrOrStderr(),
				Console:    true,
			})
			base := postgres.NewBaseRepository(db)
			storage := service.NewStorage(cfg.Scheduling.ToRetryPolicy(), log,
				metrics.NewMetrics(prometheus.NewRegistry(), "portalctl"))
			svc := account.NewService(postgres.NewAccountRepository(base),
				security.NewBcryptHasher(bcrypt.DefaultCost), storage, log)

			res, err := account.NewSeeder(svc, postgres.NewPrescriptionRepository(base)).Seed(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d accounts, %d prescriptions, skipped %d existing accounts\n",
				res.Accounts, res.Prescriptions, res.Skipped)
			return nil
		},
	}
	cmd.Flags().Bool("migrate", false, "create the schema before seeding")
	return cmd
}

// tokenCmd issues a bearer token for an existing account. Login itself is
// handled outside this service.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			roleFlag, _ := cmd.Flags().GetString("role")
			email, _ := cmd.Flags().GetString("email")
			role := model.Role(roleFlag)
			if !role.IsValid() {
				return fmt.Errorf("unknown role %q", roleFlag)
			}

			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			acct, err := postgres.NewAccountRepository(postgres.NewBaseRepository(db)).GetByEmail(ctx, role, email)
			if err != nil {
				return fmt.Errorf("no %s account for %s: %w", role, email, err)
			}

			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl <= 0 {
				ttl = cfg.JWT.TokenExpiry
			}
			token, expires, err := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).
				Generate(auth.Identity{SubjectID: acct.ID, Role: acct.Role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "subject %s, expires %s\n", acct.ID, expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().String("role", string(model.RolePatient), "account role: patient, clinician or admin")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().Duration("ttl", 0, "token lifetime (defaults to jwt.token_expiry)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
