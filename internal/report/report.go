// Package report writes run results and device lists in the supported output formats.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/pkg/errors"
)

var (
	ErrOutputFormat = errors.New("unsupported output format")
	ErrWrite        = errors.New("error writing report")
)

// UnsupportedFormatError returns the error for an output format not among the supported ones.
func UnsupportedFormatError(format string, supported []model.OutputFormat) error {
	return errors.Wrap(ErrOutputFormat, fmt.Sprintf("%q, expected one of: %s", format, model.FormatList(supported)))
}

// Write renders the run results in the given format.
//
// summary prints the success and failure counts followed by one line per failed device,
// detailed adds one line per successful device with its response and json emits the Results as is.
func Write(w io.Writer, results *model.Results, format model.OutputFormat) error {
	var err error

	switch format {
	case model.OutputSummary:
		err = writeSummary(w, results, false)
	case model.OutputDetailed:
		err = writeSummary(w, results, true)
	case model.OutputJSON:
		err = writeJSON(w, results)
	default:
		return errors.Wrap(ErrOutputFormat, string(format))
	}

	if err != nil {
		return errors.Wrap(ErrWrite, err.Error())
	}

	return nil
}

func writeSummary(w io.Writer, results *model.Results, detailed bool) error {
	b := &strings.Builder{}
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(b, "\n%s\nEXECUTION SUMMARY\n%s\n", rule, rule)

	fmt.Fprintf(b, "\nSuccessful: %d device(s)\n", len(results.Successful))

	if detailed {
		for _, r := range results.Successful {
			fmt.Fprintf(b, "  - %s (%s): %s\n", r.Device, r.DeviceID, resultText(r.Result))
		}
	}

	fmt.Fprintf(b, "\nFailed: %d device(s)\n", len(results.Failed))

	for _, r := range results.Failed {
		fmt.Fprintf(b, "  - %s (%s): %s\n", r.Device, r.DeviceID, r.Error.Error())
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func resultText(v *model.Value) string {
	if v == nil {
		return model.Null().String()
	}

	return v.String()
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(b, '\n'))

	return err
}

// WriteDevices renders a device list as a table or as JSON.
func WriteDevices(w io.Writer, devices model.Devices, format model.OutputFormat) error {
	var err error

	switch format {
	case model.OutputTable:
		err = writeDevicesTable(w, devices)
	case model.OutputJSON:
		if devices == nil {
			devices = model.Devices{}
		}

		err = writeJSON(w, devices)
	default:
		return errors.Wrap(ErrOutputFormat, string(format))
	}

	if err != nil {
		return errors.Wrap(ErrWrite, err.Error())
	}

	return nil
}

func writeDevicesTable(w io.Writer, devices model.Devices) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tNAME\tPRODUCT\tSTATUS\tTAGS")

	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.DisplayName, d.Product, d.ConnectionStatus, strings.Join(d.Tags, ","))
	}

	return tw.Flush()
}

type plannedRequest struct {
	Device  string               `json:"device"`
	URL     string               `json:"url"`
	Payload model.CommandPayload `json:"payload"`
}

// WritePlan renders the requests a run would send to the devices without sending them.
func WritePlan(w io.Writer, commandURL string, cmd *model.Command, devices model.Devices, format model.OutputFormat) error {
	planned := make([]plannedRequest, 0, len(devices))
	for _, d := range devices {
		planned = append(planned, plannedRequest{Device: d.DisplayName, URL: commandURL, Payload: cmd.Payload(d.ID)})
	}

	var err error

	switch format {
	case model.OutputJSON:
		err = writeJSON(w, planned)
	case model.OutputSummary, model.OutputDetailed:
		b := &strings.Builder{}
		fmt.Fprintf(b, "\nDry run, %s not sent to %d device(s):\n", cmd.Name, len(planned))

		for _, p := range planned {
			payload, merr := json.Marshal(p.Payload)
			if merr != nil {
				return errors.Wrap(ErrWrite, merr.Error())
			}

			fmt.Fprintf(b, "  - %s: POST %s %s\n", p.Device, p.URL, payload)
		}

		_, err = io.WriteString(w, b.String())
	default:
		return errors.Wrap(ErrOutputFormat, string(format))
	}

	if err != nil {
		return errors.Wrap(ErrWrite, err.Error())
	}

	return nil
}
