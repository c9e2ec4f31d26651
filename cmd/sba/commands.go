package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ak/sba/internal/app/middleware"
	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/services"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCatalogCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the ingredient catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.FunctionalRole(role)
			if r != "" && !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLES\tDOSAGE")
			for _, e := range brewing.ListCatalog() {
				names := make([]string, 0, len(e.Roles))
				keep := r == ""
				for _, er := range e.Roles {
					names = append(names, string(er))
					keep = keep || er == r
				}
				if !keep {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Name, strings.Join(names, ","), brewing.DosageText(e.ID))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list ingredients with this functional role")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var (
		region string
		onHand []string
		role   string
	)
	cmd := &cobra.Command{
		Use:   "suggest <ingredient-id>",
		Short: "Suggest substitutes for an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.FunctionalRole(role)
			if r != "" && !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if !brewing.KnownIngredient(args[0]) {
				return fmt.Errorf("unknown ingredient %q", args[0])
			}

			suggestions := brewing.SuggestSubstitutes(args[0], models.SubstitutionContext{
				Region:      brewing.NormalizeRegion(region),
				OnHand:      onHand,
				DesiredRole: r,
			})
			out := cmd.OutOrStdout()
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No substitutes known.")
				return nil
			}
			for i, s := range suggestions {
				line := fmt.Sprintf("%d. %s: %s", i+1, s.ID, s.Reason)
				if s.Dosage != "" {
					line += " - " + s.Dosage
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "region code used for availability notes (default GLOBAL)")
	cmd.Flags().StringSliceVar(&onHand, "on-hand", nil, "ingredient ids already on hand")
	cmd.Flags().StringVar(&role, "role", "", "desired functional role")
	return cmd
}

func newRecipeCmd() *cobra.Command {
	var (
		stage          string
		volume         float64
		aloe           float64
		yucca          bool
		noAloe         bool
		onHand         []string
		noCarbs        bool
		carbsDose      float64
		carbsUnit      string
		carbsSourceKey string
		carbsSource    string
		format         string
	)
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Build a stage recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := brewing.ParseStage(stage)
			if err != nil {
				return err
			}
			if volume <= 0 {
				return fmt.Errorf("volume must be greater than zero, got %s", export.Number(volume))
			}
			if carbsUnit != "" && !models.CarbUnit(carbsUnit).Valid() {
				return fmt.Errorf("carbs unit must be ml or g, got %q", carbsUnit)
			}
			if carbsSourceKey != "" && !models.CarbSourceKey(carbsSourceKey).Valid() {
				return fmt.Errorf("unknown carbs source %q", carbsSourceKey)
			}

			rc := models.RecipeContext{
				Stage:          st,
				VolumeLiters:   volume,
				AloePercent:    aloe,
				YuccaAvailable: yucca,
				AloeAvailable:  !noAloe,
				OnHand:         onHand,
				IncludeCarbs:   models.Bool(!noCarbs),
				CarbsSource:    carbsSource,
				CarbsUnit:      models.CarbUnit(carbsUnit),
				CarbsSourceKey: models.CarbSourceKey(carbsSourceKey),
			}
			if cmd.Flags().Changed("carbs-dose") {
				rc.CarbsPerL = models.Float64(carbsDose)
			}

			items := brewing.BuildStageRecipe(rc)
			return writeRecipe(cmd.OutOrStdout(), format, rc, items)
		},
	}
	cmd.Flags().StringVar(&stage, "stage", string(models.StageLateFlower), "growth stage: seedling, veg, early-flower or late-flower")
	cmd.Flags().Float64Var(&volume, "volume", 20, "brew volume in liters")
	cmd.Flags().Float64Var(&aloe, "aloe", 5, "aloe concentration in % v/v")
	cmd.Flags().BoolVar(&yucca, "yucca", false, "yucca extract is available")
	cmd.Flags().BoolVar(&noAloe, "no-aloe", false, "aloe juice is not available")
	cmd.Flags().StringSliceVar(&onHand, "on-hand", nil, "ingredient ids already on hand")
	cmd.Flags().BoolVar(&noCarbs, "no-carbs", false, "leave out the carbohydrate line")
	cmd.Flags().Float64Var(&carbsDose, "carbs-dose", 0, "carbohydrate dose per liter (defaults to the stage dose)")
	cmd.Flags().StringVar(&carbsUnit, "carbs-unit", "", "carbohydrate unit: ml or g")
	cmd.Flags().StringVar(&carbsSourceKey, "carbs-source-key", "", "carbohydrate source: molasses, millet, oat or other")
	cmd.Flags().StringVar(&carbsSource, "carbs-source", "", "label printed for the carbohydrate line")
	cmd.Flags().StringVar(&format, "format", services.FormatText, "output format: text or csv")
	return cmd
}

func writeRecipe(w io.Writer, format string, rc models.RecipeContext, items []models.RecipeItem) error {
	switch strings.ToLower(format) {
	case services.FormatText:
		_, err := fmt.Fprintln(w, export.RecipeText(export.RecipeHeader{
			Stage:        rc.Stage,
			VolumeLiters: rc.VolumeLiters,
			AloePercent:  rc.AloePercent,
		}, items))
		return err
	case services.FormatCSV:
		out, err := export.RecipeCSV(items)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unsupported format %q", format)
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		roles   []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			token, err := middleware.GenerateToken(middleware.JWTConfig{
				Secret:         cfg.JWT.Secret,
				Issuer:         cfg.JWT.Issuer,
				AccessTokenTTL: cfg.JWT.AccessTokenTTL,
			}, subject, roles)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			log.Debug("Token issued", zap.String("subject", subject), zap.Strings("roles", roles))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually the grower name")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "roles to embed (admin may restore or wipe backups)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the document stores",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON backup to file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(func(ctx context.Context, svc services.BackupService) error {
				backup, err := svc.Export(ctx)
				if err != nil {
					return err
				}
				raw, err := json.MarshalIndent(backup, "", "  ")
				if err != nil {
					return err
				}
				if len(args) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
					return err
				}
				return os.WriteFile(args[0], raw, 0o600)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Replace both stores with the contents of a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var backup models.Backup
			if err := json.Unmarshal(raw, &backup); err != nil {
				return fmt.Errorf("%w: %v", services.ErrInvalidBackup, err)
			}
			return withBackupService(func(ctx context.Context, svc services.BackupService) error {
				result, err := svc.Import(ctx, &backup)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d settings and %d log documents (%d skipped)\n",
					result.Settings, result.Logs, result.Skipped)
				return nil
			})
		},
	})

	return cmd
}

func withBackupService(fn func(ctx context.Context, svc services.BackupService) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	repos, closeStorage, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	return fn(context.Background(), services.NewBackupService(repos.Settings, repos.Logs, log))
}
