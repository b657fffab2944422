package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ehr/artreports/internal/config"
	"github.com/ehr/artreports/internal/domain/artstart"
	"github.com/ehr/artreports/internal/platform/db"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations from %s on schema: %s\n", migrator.Source(), schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "tenant_default", "Target schema for migrations")
	upCmd.Flags().String("dir", "", "Migrations directory (embedded migrations when empty)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration status for schema: %s\n", schema)
			printStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("schema", "tenant_default", "Target schema for migrations")
	statusCmd.Flags().String("dir", "", "Migrations directory (embedded migrations when empty)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant schema and apply the migrations to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Creating tenant schema: tenant_%s\n", name)
			if err := db.CreateTenantSchema(ctx, pool, name, db.NewMigrator(pool, "")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tenant created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Tenant identifier (alphanumeric)")
	cmd.AddCommand(createCmd)

	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compute ART start dates for a cohort and print one JSON line per patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawIDs, _ := cmd.Flags().GetStringSlice("patient")
			onOrBefore, _ := cmd.Flags().GetString("on-or-before")
			tenant, _ := cmd.Flags().GetString("tenant")

			explicit, err := parsePatientIDs(rawIDs)
			if err != nil {
				return err
			}
			params, err := artstart.ParseParams(map[string]string{artstart.ParamOnOrBefore: onOrBefore})
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if tenant == "" {
				tenant = cfg.DefaultTenant
			}
			// JSON lines go to stdout, logs to stderr.
			logger := newLogger(cfg.Env, cmd.ErrOrStderr())

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			a, err := newApp(cfg, pool, logger)
			if err != nil {
				return err
			}

			ctx, release, err := db.AcquireTenant(ctx, pool, tenant)
			if err != nil {
				return err
			}
			defer release()

			ctx, tx, err := db.WithTx(ctx)
			if err != nil {
				return err
			}
			defer tx.Rollback(ctx) //nolint:errcheck

			ids, err := a.cohorts.Resolve(ctx, explicit, a.meta.HIVProgram)
			if err != nil {
				return fmt.Errorf("resolve cohort: %w", err)
			}

			results, err := a.calculator.EvaluateCohort(ctx, ids, params)
			if err != nil {
				return err
			}
			return writeResolutions(cmd.OutOrStdout(), ids, results)
		},
	}
	cmd.Flags().StringSlice("patient", nil, "Patient id to evaluate (repeatable); all HIV program patients when omitted")
	cmd.Flags().String("on-or-before", "", "Ignore records after this date (YYYY-MM-DD)")
	cmd.Flags().String("tenant", "", "Tenant to evaluate (defaults to DEFAULT_TENANT)")
	return cmd
}

func parsePatientIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid patient id %q: %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type resolutionLine struct {
	PatientID uuid.UUID `json:"patient_id"`
	StartDate *string   `json:"start_date"`
	Source    string    `json:"source,omitempty"`
}

// writeResolutions prints results in cohort order, one JSON object per line.
func writeResolutions(w io.Writer, cohort []uuid.UUID, results map[uuid.UUID]artstart.Resolution) error {
	enc := json.NewEncoder(w)
	for _, pid := range cohort {
		r, ok := results[pid]
		if !ok {
			continue
		}
		line := resolutionLine{PatientID: pid}
		if r.StartDate != nil {
			d := r.StartDate.Format(time.DateOnly)
			line.StartDate = &d
			line.Source = r.Source.String()
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
