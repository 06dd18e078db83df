package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	commandPath = "xapi/command"
)

// CommandURL returns the URL the command is posted to.
func (c *Client) CommandURL(cmd *model.Command) string {
	// the name is escaped as a single path segment, JoinPath would split it on slashes
	return c.endpoint.JoinPath(commandPath).String() + "/" + cmd.Path()
}

// ExecuteCommand runs the xAPI command on the device and returns the decoded response body.
//
// A non success response is returned as a *StatusError carrying the status code and the raw body,
// any other error means no response was received.
func (c *Client) ExecuteCommand(ctx context.Context, deviceID string, cmd *model.Command) (model.Value, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Client.ExecuteCommand")
	defer span.End()

	span.SetAttributes(
		attribute.String("command", cmd.Name),
		attribute.String("deviceID", deviceID),
	)

	payload, err := json.Marshal(cmd.Payload(deviceID))
	if err != nil {
		return model.Null(), errors.Wrap(ErrRequest, "payload encode error: "+err.Error())
	}

	commandURL := c.CommandURL(cmd)

	c.logger.WithFields(logrus.Fields{
		"deviceID": deviceID,
		"url":      commandURL,
		"body":     string(payload),
	}).Debug("sending command request")

	req, err := c.newRequest(ctx, http.MethodPost, commandURL, payload)
	if err != nil {
		return model.Null(), err
	}

	resp, err := c.do(req, "command")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.Null(), errors.Wrap(ErrRequest, err.Error())
	}

	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		statusErr := statusError(req, resp)
		span.SetStatus(codes.Error, statusErr.Error())

		return model.Null(), statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Null(), errors.Wrap(ErrResponse, "body read error: "+err.Error())
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return model.Null(), nil
	}

	result := model.Value{}
	if err := json.Unmarshal(body, &result); err != nil {
		return model.Null(), errors.Wrap(ErrResponse, "body decode error: "+err.Error())
	}

	return result, nil
}
