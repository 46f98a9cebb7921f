package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teereserve/golf-booking/internal/config"
	"github.com/teereserve/golf-booking/internal/database"
	"github.com/teereserve/golf-booking/internal/pricing"
	"github.com/teereserve/golf-booking/internal/repository"
	"github.com/teereserve/golf-booking/internal/service"
)

func quoteCmd() *cobra.Command {
	var (
		courseID string
		at       string
		explain  bool
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Resolve the price of a course from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			when := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				when = t
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(dbSettings(cfg))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			ctx := newLogger(cfg).WithContext(cmd.Context())
			prices := service.NewPricingService(repository.NewRuleStore(db))
			out := cmd.OutOrStdout()
			if !explain {
				q, err := prices.QuoteAt(ctx, courseID, when)
				if err != nil {
					return explainErr(courseID, err)
				}
				fmt.Fprintf(out, "%s %.2f %s\n", q.CourseID, q.MinPrice, q.Currency)
				return nil
			}

			rules, err := repository.NewPriceRuleRepo(db).ListByCourse(ctx, courseID)
			if err != nil {
				return err
			}
			q, lines, err := prices.Preview(ctx, courseID, rules, when)
			if err != nil {
				return explainErr(courseID, err)
			}
			for _, l := range lines {
				fmt.Fprintf(out, "%-36s %-24s %-10s applies=%-5t %.2f\n", l.RuleID, l.Name, l.PriceType, l.Applies, l.Candidate)
			}
			fmt.Fprintf(out, "%s %.2f %s\n", q.CourseID, q.MinPrice, q.Currency)
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course id")
	cmd.Flags().StringVar(&at, "at", "", "instant to price, RFC3339 (default now)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print every rule's candidate price")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

// explainErr turns resolver sentinels into flag-oriented messages.
func explainErr(courseID string, err error) error {
	switch {
	case errors.Is(err, pricing.ErrValidation):
		return fmt.Errorf("--course is required")
	case errors.Is(err, pricing.ErrPriceNotFound):
		return fmt.Errorf("course %q has no base product and no base price", courseID)
	}
	return err
}
