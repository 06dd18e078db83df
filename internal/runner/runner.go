package runner

import (
	"context"

	"github.com/google/uuid"
	"github.com/metal-toolbox/xapictl/internal/device"
	"github.com/metal-toolbox/xapictl/internal/metrics"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/metal-toolbox/xapictl/internal/xapi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	pkgName = "internal/runner"
)

var (
	ErrFetch = errors.New("error fetching devices")
)

// A Runner instance runs a single command on every device carrying a tag,
// collecting the outcome per device.
type Runner struct {
	id        uuid.UUID
	commander device.Commander
	logger    *logrus.Entry
}

func New(id uuid.UUID, commander device.Commander, logger *logrus.Entry) *Runner {
	return &Runner{
		id:        id,
		commander: commander,
		logger:    logger.WithField("runID", id.String()),
	}
}

// ID returns the run identifier.
func (r *Runner) ID() uuid.UUID {
	return r.id
}

// Plan fetches the devices and returns the ones carrying the tag, in fetch order.
func (r *Runner) Plan(ctx context.Context, tag string) (model.Devices, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Runner.Plan")
	defer span.End()

	r.logger.Info("Fetching devices...")

	devices, err := r.commander.ListDevices(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}

	selected := devices.WithTag(tag)

	metrics.CountDevices(len(devices), len(selected))
	span.SetAttributes(
		attribute.String("tag", tag),
		attribute.Int("devices", len(devices)),
		attribute.Int("selected", len(selected)),
	)

	r.logger.WithFields(logrus.Fields{
		"tag":     tag,
		"devices": len(devices),
	}).Infof("Found %d device(s) with tag", len(selected))

	return selected, nil
}

// Run executes the command on every device carrying the tag.
//
// An error is returned only when the device list could not be fetched, per device failures are
// collected in the returned Results which always hold one entry for each selected device.
func (r *Runner) Run(ctx context.Context, tag string, cmd *model.Command) (*model.Results, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Runner.Run")
	defer span.End()

	span.SetAttributes(attribute.String("command", cmd.Name))

	devices, err := r.Plan(ctx, tag)
	if err != nil {
		return nil, err
	}

	results := model.NewResults()
	if len(devices) == 0 {
		return results, nil
	}

	for idx := range devices {
		result := r.dispatch(ctx, &devices[idx], cmd)
		metrics.CountCommand(cmd.Name, result.Succeeded())

		results.Add(result)
	}

	span.SetAttributes(
		attribute.Int("successful", len(results.Successful)),
		attribute.Int("failed", len(results.Failed)),
	)

	r.logger.WithFields(logrus.Fields{
		"command":    cmd.Name,
		"successful": len(results.Successful),
		"failed":     len(results.Failed),
	}).Info("command run complete")

	return results, nil
}

// dispatch runs the command on a single device and converts the outcome into an ExecutionResult.
func (r *Runner) dispatch(ctx context.Context, dev *model.Device, cmd *model.Command) model.ExecutionResult {
	le := r.logger.WithFields(logrus.Fields{
		"device":   dev.DisplayName,
		"deviceID": dev.ID,
	})

	// devices left once the run is canceled are reported as not attempted
	if err := ctx.Err(); err != nil {
		le.WithError(err).Warn("command not sent")
		return model.NewFailure(dev, &model.Failure{Message: "command not sent: " + err.Error()})
	}

	le.Debug("running command")

	value, err := r.commander.ExecuteCommand(ctx, dev.ID, cmd)
	if err != nil {
		var statusErr *xapi.StatusError
		if errors.As(err, &statusErr) {
			le.WithField("status", statusErr.StatusCode).Warn("command failed")
			return model.NewFailure(dev, model.NewStatusFailure(statusErr.StatusCode, statusErr.Body))
		}

		le.WithError(err).Warn("command failed")

		return model.NewFailure(dev, &model.Failure{Message: err.Error()})
	}

	le.Debug("command succeeded")

	return model.NewSuccess(dev, value)
}
