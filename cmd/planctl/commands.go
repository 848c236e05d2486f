package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	"github.com/noah-isme/weekplan-api/internal/planner"
	"github.com/noah-isme/weekplan-api/internal/service"
	"github.com/noah-isme/weekplan-api/pkg/config"
)

type cliOptions struct {
	input  string
	pretty bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Offline weekly planner and course analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.input, "in", "i", "-", "Input JSON file (- for stdin)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")

	root.AddCommand(
		synthesizeCmd(opts),
		gridCmd(opts, "optimize", "Run the three optimizer passes over a grid", planner.Optimize),
		gridCmd(opts, "suggest", "Fill free time in a grid with suggestions", planner.Suggest),
		conflictsCmd(opts),
		feasibilityCmd(opts),
		tokenCmd(opts),
	)
	return root
}

func synthesizeCmd(opts *cliOptions) *cobra.Command {
	var optimize, suggest bool
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Build a weekly grid from a constraints document",
		RunE: func(cmd *cobra.Command, args []string) error {
			var constraints models.ScheduleConstraints
			if err := readInput(cmd, opts, &constraints); err != nil {
				return err
			}
			grid := planner.SynthesizeAt(constraints, time.Now().UTC())
			if optimize {
				grid = planner.Optimize(grid, grid.Metadata.Constraints)
			}
			if suggest {
				grid = planner.Suggest(grid, grid.Metadata.Constraints)
			}
			grid.Metadata.Statistics = planner.Statistics(grid)
			return writeOutput(cmd, opts, grid)
		},
	}
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Optimize the synthesized grid")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Fill free time after synthesis")
	return cmd
}

type gridTransform func(models.ScheduleGrid, models.ScheduleConstraints) models.ScheduleGrid

func gridCmd(opts *cliOptions, use, short string, fn gridTransform) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var grid models.ScheduleGrid
			if err := readInput(cmd, opts, &grid); err != nil {
				return err
			}
			if len(grid.Rows) == 0 {
				return fmt.Errorf("%s: input grid has no rows", use)
			}
			out := fn(grid, grid.Metadata.Constraints)
			out.Metadata.Statistics = planner.Statistics(out)
			return writeOutput(cmd, opts, out)
		},
	}
}

func conflictsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Detect conflicts in a {\"courses\": [...]} document",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.CourseSetRequest
			if err := readInput(cmd, opts, &req); err != nil {
				return err
			}
			conflicts, _, err := analyzer().DetectConflicts(cmd.Context(), req)
			if err != nil {
				return err
			}
			if conflicts == nil {
				conflicts = []models.CourseConflict{}
			}
			return writeOutput(cmd, opts, conflicts)
		},
	}
}

func feasibilityCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "feasibility",
		Short: "Score a {\"courses\": [...], \"constraints\": {...}} document",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.FeasibilityRequest
			if err := readInput(cmd, opts, &req); err != nil {
				return err
			}
			report, _, err := analyzer().Feasibility(cmd.Context(), "", req)
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts, report)
		},
	}
}

func tokenCmd(opts *cliOptions) *cobra.Command {
	var user, secret string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the /me endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || ttl <= 0 {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if secret == "" {
					secret = cfg.JWT.Secret
				}
				if ttl <= 0 {
					ttl = cfg.JWT.Expiration
				}
			}
			issued, err := service.NewTokenService(service.TokenConfig{Secret: secret, Expiry: ttl}).Issue(user)
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts, issued)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func analyzer() *service.AcademicService {
	return service.NewAcademicService(service.AcademicServiceParams{})
}

func readInput(cmd *cobra.Command, opts *cliOptions, dest interface{}) error {
	var r io.Reader = cmd.InOrStdin()
	if opts.input != "" && opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dest); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, opts *cliOptions, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(value)
}
