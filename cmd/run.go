package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"strings"

	"github.com/equinix-labs/otel-init-go/otelinit"
	"github.com/google/uuid"
	"github.com/metal-toolbox/xapictl/internal/app"
	"github.com/metal-toolbox/xapictl/internal/command"
	"github.com/metal-toolbox/xapictl/internal/metrics"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/metal-toolbox/xapictl/internal/report"
	"github.com/metal-toolbox/xapictl/internal/runner"
	"github.com/metal-toolbox/xapictl/internal/version"
	"github.com/metal-toolbox/xapictl/internal/xapi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cmdRun = &cobra.Command{
	Use:   "run --tag TAG --command COMMAND",
	Short: "Run an xAPI command on every device carrying a tag",
	Example: `  xapictl run --tag conference-room --command "Audio.Volume.Set Level:50"
  xapictl run --tag lobby --command 'Standby.Activate' --output json
  xapictl run --tag conference-room --command 'UserInterface.Message.Alert.Display {"Title": "Notice", "Text": "Meeting starts soon", "Duration": 10}'`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return validateOutput(runFlagSet.output, model.RunOutputFormats())
	},
	Run: func(cmd *cobra.Command, _ []string) {
		os.Exit(runCommand(cmd.Context(), os.Stdout))
	},
}

type runFlags struct {
	tag     string
	command string
	token   string
	output  string
	dryRun  bool
}

var (
	runFlagSet = &runFlags{}
)

// runCommand runs the command on the tagged devices, writes the report to out and returns the process exit code.
func runCommand(ctx context.Context, out io.Writer) int {
	xapictl, err := app.New(appOptions())
	if err != nil {
		log.Println(err)
		return 1
	}

	logger := xapictl.Logger

	token, err := xapictl.AccessToken(runFlagSet.token)
	if err != nil {
		logger.Error(err)
		return 1
	}

	cmd, err := command.Parse(runFlagSet.command)
	if err != nil {
		logger.Error(err)
		return 1
	}

	ctx, otelShutdown := otelinit.InitOpenTelemetry(ctx, model.AppName)
	defer otelShutdown(ctx)

	ctx, cancelFunc := xapictl.CancelOnSignal(ctx)
	defer cancelFunc()

	runID := uuid.New()

	client, err := xapi.NewClient(xapictl.Config, token, logger, xapi.WithTrackingID(model.AppName+"_"+runID.String()))
	if err != nil {
		logger.Error(err)
		return 1
	}

	r := runner.New(runID, client, logrus.NewEntry(logger))
	format := model.OutputFormat(strings.ToLower(runFlagSet.output))

	logger.WithFields(logrus.Fields{
		"command":   cmd.Name,
		"arguments": cmd.ArgumentsJSON(),
		"tag":       runFlagSet.tag,
		"dryRun":    runFlagSet.dryRun,
	}).Info("Executing command")

	if runFlagSet.dryRun {
		devices, err := r.Plan(ctx, runFlagSet.tag)
		if err != nil {
			logger.Error(err)
			return 1
		}

		if err := report.WritePlan(out, client.CommandURL(&cmd), &cmd, devices, format); err != nil {
			logger.Error(err)
			return 1
		}

		return 0
	}

	results, err := r.Run(ctx, runFlagSet.tag, &cmd)

	pushMetrics(xapictl.Config, runID, logger)

	if err != nil {
		logger.Error(err)
		return 1
	}

	if err := report.Write(out, results, format); err != nil {
		logger.Error(err)
		return 1
	}

	if err := results.Err(); err != nil {
		logger.WithField("failed", len(results.Failed)).Debug(err)
		return 1
	}

	return 0
}

// pushMetrics sends the run metrics to the Pushgateway when one is configured.
func pushMetrics(cfg *app.Configuration, runID uuid.UUID, logger *logrus.Logger) {
	if cfg.Metrics.Pushgateway == "" {
		return
	}

	version.ExportBuildInfoMetric()

	if err := metrics.Push(cfg.Metrics.Pushgateway, runID.String()); err != nil {
		logger.WithError(err).Warn("metrics push failed")
	}
}

func validateOutput(output string, supported []model.OutputFormat) error {
	if !model.ValidOutputFormat(output, supported) {
		return report.UnsupportedFormatError(output, supported)
	}

	return nil
}

func init() {
	cmdRun.Flags().StringVar(&runFlagSet.tag, "tag", "", "Device tag to filter on (exact, case sensitive match)")
	cmdRun.Flags().StringVar(&runFlagSet.command, "command", "", "xAPI command with optional arguments, as JSON or key:value pairs")
	cmdRun.Flags().StringVar(&runFlagSet.token, "token", "", "Access token, defaults to the "+app.TokenEnvVar+" environment variable")
	cmdRun.Flags().StringVarP(&runFlagSet.output, "output", "o", string(model.OutputSummary), "Output format - "+model.FormatList(model.RunOutputFormats()))
	cmdRun.Flags().BoolVar(&runFlagSet.dryRun, "dry-run", false, "List the devices and requests without running the command")

	for _, f := range []string{"tag", "command"} {
		if err := cmdRun.MarkFlagRequired(f); err != nil {
			log.Fatal(err)
		}
	}

	rootCmd.AddCommand(cmdRun)
}
