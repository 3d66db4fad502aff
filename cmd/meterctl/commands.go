package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/middleware"
)

func newMigrateCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		}),
	}
}

func newSweepCmd(run runner) *cobra.Command {
	var enqueue bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Zero the daily counters of every tenant whose UTC day has turned over",
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if enqueue {
				if a.resetQueue == nil {
					return errors.New("SQS is not reachable")
				}
				if err := a.resetQueue.SendDailyResetMessage(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "DAILY_RESET message enqueued")
				return nil
			}

			result, err := a.sweeper.RunDailyResetSweep(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}),
	}
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "hand the sweep to a reset worker instead of running it here")

	return cmd
}

func newPlanCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage pricing plans",
	}

	cmd.AddCommand(
		newPlanUpsertCmd(run),
		newPlanSetDefaultCmd(run),
	)

	return cmd
}

func newPlanUpsertCmd(run runner) *cobra.Command {
	var (
		id       string
		cost     string
		monthly  int64
		daily    int64
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "upsert NAME",
		Short: "Create a plan or update the plan with the same name",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			amount, err := decimal.NewFromString(cost)
			if err != nil {
				return fmt.Errorf("invalid --cost %q: %w", cost, err)
			}

			req := dto.UpsertPlanRequest{
				ID:                       id,
				Name:                     args[0],
				Cost:                     amount,
				MonthlyTokenLimitPerUser: monthly,
				DailyTokenLimitPerUser:   daily,
			}
			if cmd.Flags().Changed("inactive") {
				active := !inactive
				req.IsActive = &active
			}

			plan, err := a.plans.UpsertPlan(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		}),
	}
	cmd.Flags().StringVar(&id, "id", "", "update this plan instead of matching by name")
	cmd.Flags().StringVar(&cost, "cost", "0", "monthly cost per paid user")
	cmd.Flags().Int64Var(&monthly, "monthly-limit", 0, "monthly token limit per user")
	cmd.Flags().Int64Var(&daily, "daily-limit", 0, "daily token limit per user, 0 for unlimited")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "mark the plan inactive")

	return cmd
}

func newPlanSetDefaultCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default PLAN_ID",
		Short: "Make a plan the default for new organizations",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.plans.SetDefaultPlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			plan, err := a.plans.GetPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		}),
	}
}

func newOrgCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}

	cmd.AddCommand(newOrgAssignPlanCmd(run))

	return cmd
}

func newOrgAssignPlanCmd(run runner) *cobra.Command {
	var usersPaid int

	cmd := &cobra.Command{
		Use:   "assign-plan ORGANIZATION_ID PLAN_ID",
		Short: "Move an organization to a plan and reset member limits to the plan's",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			resp, err := a.orgs.AssignPlan(cmd.Context(), args[0], dto.AssignPlanRequest{
				PlanID:            args[1],
				NumberOfUsersPaid: usersPaid,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}),
	}
	cmd.Flags().IntVar(&usersPaid, "users-paid", 0, "paid seats, 0 keeps the current number")

	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		orgID  string
		roles  string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				_ = godotenv.Load()
				secret = os.Getenv("JWT_SECRET_KEY")
			}
			if secret == "" {
				return errors.New("JWT secret is required: pass --secret or set JWT_SECRET_KEY")
			}

			var roleList []string
			for _, r := range strings.Split(roles, ",") {
				if r = strings.TrimSpace(r); r != "" {
					roleList = append(roleList, r)
				}
			}

			token, err := middleware.GenerateToken(secret, ttl, userID, orgID, roleList)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user_id claim")
	cmd.Flags().StringVar(&orgID, "org", "", "organization_id claim")
	cmd.Flags().StringVar(&roles, "roles", "member", "comma-separated roles: admin, member, metering")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret, defaults to JWT_SECRET_KEY")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}
