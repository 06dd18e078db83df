package xapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/metal-toolbox/xapictl/internal/metrics"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tomnomnom/linkheader"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	devicesPath = "devices"
)

var (
	ErrDeviceList     = errors.New("error listing devices")
	ErrPaginationLoop = errors.New("device list next page link was already fetched")
)

type devicesResponse struct {
	Items model.Devices `json:"items"`
}

// ListDevices returns every device known to the API, following the Link rel="next"
// header until the last page.
func (c *Client) ListDevices(ctx context.Context) (model.Devices, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Client.ListDevices")
	defer span.End()

	devices := model.Devices{}
	fetched := map[string]bool{}

	next := c.devicesURL()
	for page := 1; next != ""; page++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(ErrDeviceList, err.Error())
		}

		if fetched[next] {
			return nil, errors.Wrap(ErrPaginationLoop, next)
		}

		fetched[next] = true

		items, link, err := c.devicesPage(ctx, next)
		if err != nil {
			return nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"page":    page,
			"devices": len(items),
		}).Trace("device list page fetched")

		devices = append(devices, items...)
		next = link
	}

	span.SetAttributes(attribute.Int("devices", len(devices)))

	return devices, nil
}

func (c *Client) devicesURL() string {
	u := c.endpoint.JoinPath(devicesPath)
	if c.pageSize > 0 {
		u.RawQuery = url.Values{"max": []string{strconv.Itoa(c.pageSize)}}.Encode()
	}

	return u.String()
}

// devicesPage fetches a single page of the device list, returning its items and the next page URL if any.
func (c *Client) devicesPage(ctx context.Context, pageURL string) (model.Devices, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(ErrDeviceList, err.Error())
	}

	resp, err := c.do(req, "devices")
	if err != nil {
		return nil, "", errors.Wrap(ErrDeviceList, err.Error())
	}

	defer resp.Body.Close()

	metrics.DevicePages.Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Wrap(ErrDeviceList, statusError(req, resp).Error())
	}

	page := &devicesResponse{}
	if err := json.NewDecoder(resp.Body).Decode(page); err != nil {
		return nil, "", errors.Wrap(ErrDeviceList, "response decode error: "+err.Error())
	}

	next, err := nextPageURL(req.URL, resp.Header)
	if err != nil {
		return nil, "", errors.Wrap(ErrDeviceList, err.Error())
	}

	return page.Items, next, nil
}

// nextPageURL returns the rel="next" link from the response headers resolved against the request URL,
// an empty string is returned on the last page.
func nextPageURL(reqURL *url.URL, header http.Header) (string, error) {
	links := linkheader.ParseMultiple(header.Values("Link")).FilterByRel("next")
	if len(links) == 0 || links[0].URL == "" {
		return "", nil
	}

	next, err := reqURL.Parse(links[0].URL)
	if err != nil {
		return "", errors.Wrap(ErrResponse, "next page link: "+err.Error())
	}

	return next.String(), nil
}
