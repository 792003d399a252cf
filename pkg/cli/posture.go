package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/phisec-lab/panoptes/pkg/cli/config"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/usecase"
	"github.com/phisec-lab/panoptes/pkg/utils/safe"
)

func cmdPosture() *cli.Command {
	var orgID string
	var asJSON bool
	var record bool
	var repoCfg config.Repository
	var scoringCfg config.Scoring

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "org",
			Usage:       "Organization ID",
			Required:    true,
			Sources:     cli.EnvVars("PANOPTES_ORG"),
			Destination: &orgID,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Emit the snapshot as JSON instead of a summary",
			Destination: &asJSON,
		},
		&cli.BoolFlag{
			Name:        "record",
			Usage:       "Record the snapshot into the posture history",
			Value:       true,
			Destination: &record,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, scoringCfg.Flags()...)

	return &cli.Command{
		Name:    "posture",
		Aliases: []string{"p"},
		Usage:   "Compute the posture snapshot for an organization",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			org := types.OrgID(orgID)
			if err := org.Validate(); err != nil {
				return err
			}

			scoring, err := scoringCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load scoring config")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithScoringConfig(scoring))

			// A failed history write only costs the trend line a data
			// point; the snapshot is still shown.
			var posture *model.Posture
			if record {
				posture, err = uc.Posture.ComputeAndRecord(ctx, org)
			} else {
				posture, err = uc.Posture.Compute(ctx, org)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to compute posture")
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(posture)
			}

			printPosture(org, posture)
			return nil
		},
	}
}

func printPosture(org types.OrgID, posture *model.Posture) {
	fmt.Printf("Organization: %s\n", org)
	fmt.Printf("Overall:      %d (%s)\n", posture.OverallScore, ratingColor(posture.Rating).Sprint(posture.Rating))

	fmt.Println("\nAssessments:")
	for _, a := range posture.Assessments {
		score := "-"
		if a.Score != nil {
			score = fmt.Sprintf("%d", *a.Score)
		}
		fmt.Printf("  %-26s %-12s score=%-4s findings=%d\n", a.Name, a.Phase, score, a.FindingCount)
	}

	if len(posture.TopFindings) > 0 {
		fmt.Println("\nTop findings:")
		for _, f := range posture.TopFindings {
			fmt.Printf("  [%s] %s (%s)\n", severityColor(f.Severity).Sprint(f.Severity), f.Title, f.Source)
		}
	}
}

func ratingColor(r types.Rating) *color.Color {
	switch r {
	case types.RatingExcellent, types.RatingGood:
		return color.New(color.FgGreen)
	case types.RatingFair:
		return color.New(color.FgYellow)
	case types.RatingPoor:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func severityColor(s types.Severity) *color.Color {
	switch s {
	case types.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case types.SeverityHigh:
		return color.New(color.FgRed)
	case types.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
