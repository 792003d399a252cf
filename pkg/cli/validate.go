package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/cli/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var scoringCfg config.Scoring

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the scoring policy file",
		Flags:   scoringCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			scoring, err := scoringCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "scoring config validation failed")
			}

			if scoringCfg.Path() == "" {
				logger.Info("No scoring config specified, stock policy is valid")
			} else {
				logger.Info("Scoring config validation passed", "path", scoringCfg.Path())
			}

			for _, kind := range types.SourceKinds() {
				logger.Info("Source weight", "source", kind, "weight", scoring.Weights[kind])
			}
			logger.Info("Rating bands",
				"excellent", scoring.RatingBands.Excellent,
				"good", scoring.RatingBands.Good,
				"fair", scoring.RatingBands.Fair,
				"poor", scoring.RatingBands.Poor,
			)
			logger.Info("History retention", "days", scoring.HistoryDays, "timezone", scoring.Timezone)

			return nil
		},
	}
}
