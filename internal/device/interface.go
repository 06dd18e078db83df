package device

import (
	"context"

	"github.com/metal-toolbox/xapictl/internal/model"
)

//go:generate mockgen -source interface.go -destination=../fixtures/mock.go -package=fixtures

// Commander interface defines the methods to look up devices and run xAPI commands on them.
//
// The xapi.Client implements this interface.
type Commander interface {
	// ListDevices returns every device visible to the access token.
	ListDevices(ctx context.Context) (model.Devices, error)

	// ExecuteCommand runs the command on a single device and returns the response body.
	ExecuteCommand(ctx context.Context, deviceID string, cmd *model.Command) (model.Value, error)
}
