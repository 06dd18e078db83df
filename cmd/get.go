package cmd

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/metal-toolbox/xapictl/internal/app"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/metal-toolbox/xapictl/internal/report"
	"github.com/metal-toolbox/xapictl/internal/runner"
	"github.com/metal-toolbox/xapictl/internal/xapi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cmdGet = &cobra.Command{
	Use:   "get",
	Short: "get resources [devices]",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// command get devices
type getDevicesFlags struct {
	tag    string
	token  string
	output string
}

var (
	getDevicesFlagSet = &getDevicesFlags{}
)

var cmdGetDevices = &cobra.Command{
	Use:   "devices",
	Short: "List the devices visible to the access token, optionally only those carrying a tag",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return validateOutput(getDevicesFlagSet.output, model.ListOutputFormats())
	},
	Run: func(cmd *cobra.Command, args []string) {
		getDevices(cmd.Context())
	},
}

func getDevices(ctx context.Context) {
	xapictl, err := app.New(appOptions())
	if err != nil {
		log.Fatal(err)
	}

	token, err := xapictl.AccessToken(getDevicesFlagSet.token)
	if err != nil {
		xapictl.Logger.Fatal(err)
	}

	ctx, cancelFunc := xapictl.CancelOnSignal(ctx)
	defer cancelFunc()

	runID := uuid.New()

	client, err := xapi.NewClient(xapictl.Config, token, xapictl.Logger, xapi.WithTrackingID(model.AppName+"_"+runID.String()))
	if err != nil {
		xapictl.Logger.Fatal(err)
	}

	var devices model.Devices

	if getDevicesFlagSet.tag == "" {
		devices, err = client.ListDevices(ctx)
	} else {
		devices, err = runner.New(runID, client, logrus.NewEntry(xapictl.Logger)).Plan(ctx, getDevicesFlagSet.tag)
	}

	if err != nil {
		xapictl.Logger.Fatal(err)
	}

	format := model.OutputFormat(strings.ToLower(getDevicesFlagSet.output))
	if err := report.WriteDevices(os.Stdout, devices, format); err != nil {
		xapictl.Logger.Fatal(err)
	}
}

func init() {
	cmdGetDevices.Flags().StringVar(&getDevicesFlagSet.tag, "tag", "", "Only list devices carrying this tag")
	cmdGetDevices.Flags().StringVar(&getDevicesFlagSet.token, "token", "", "Access token, defaults to the "+app.TokenEnvVar+" environment variable")
	cmdGetDevices.Flags().StringVarP(&getDevicesFlagSet.output, "output", "o", string(model.OutputTable), "Output format - "+model.FormatList(model.ListOutputFormats()))

	cmdGet.AddCommand(cmdGetDevices)
	rootCmd.AddCommand(cmdGet)
}
