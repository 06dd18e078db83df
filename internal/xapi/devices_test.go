package xapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/metal-toolbox/xapictl/internal/app"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedDevices serves the device pages in order, each page links to the next using the cursor query parameter.
func pagedDevices(pages []string, absoluteLinks bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		idx := 0
		if cursor := c.QueryParam("cursor"); cursor != "" {
			if _, err := fmt.Sscanf(cursor, "%d", &idx); err != nil || idx >= len(pages) {
				return c.String(http.StatusBadRequest, "bad cursor")
			}
		}

		if idx+1 < len(pages) {
			link := fmt.Sprintf("/v1/devices?cursor=%d", idx+1)
			if absoluteLinks {
				link = c.Scheme() + "://" + c.Request().Host + link
			}

			c.Response().Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, link))
		}

		return c.JSONBlob(http.StatusOK, []byte(pages[idx]))
	}
}

func TestListDevicesPagination(t *testing.T) {
	pages := []string{
		`{"items": [{"id": "1", "displayName": "Lobby", "tags": ["lobby"]}, {"id": "2", "displayName": "Board Room", "tags": ["conference-room"]}]}`,
		`{"items": [{"id": "3", "tags": ["conference-room"]}]}`,
		`{"items": []}`,
		`{"items": [{"id": "4", "displayName": "Huddle", "tags": []}]}`,
	}

	tests := []struct {
		testName      string
		pages         []string
		absoluteLinks bool
		expectedIDs   []string
	}{
		{"single page", pages[:1], true, []string{"1", "2"}},
		{"two pages absolute links", pages[:2], true, []string{"1", "2", "3"}},
		{"two pages relative links", pages[:2], false, []string{"1", "2", "3"}},
		{"empty page in between", pages, true, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			requests := 0

			server := newAPIServer(t, func(e *echo.Echo) {
				handler := pagedDevices(tt.pages, tt.absoluteLinks)
				e.GET("/v1/devices", func(c echo.Context) error {
					requests++
					return handler(c)
				})
			})

			client := newTestClient(t, server, nil)

			devices, err := client.ListDevices(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.expectedIDs, devices.IDs())
			assert.Equal(t, len(tt.pages), requests)
		})
	}
}

func TestListDevicesAttributes(t *testing.T) {
	server := newAPIServer(t, func(e *echo.Echo) {
		e.GET("/v1/devices", pagedDevices([]string{
			`{"items": [{"id": "1", "displayName": "Lobby", "tags": ["lobby"], "product": "Cisco Desk Pro", "connectionStatus": "connected"}, {"id": "2"}]}`,
		}, true))
	})

	client := newTestClient(t, server, nil)

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, model.Device{
		ID:               "1",
		DisplayName:      "Lobby",
		Tags:             []string{"lobby"},
		Product:          "Cisco Desk Pro",
		ConnectionStatus: "connected",
	}, devices[0])
	assert.Equal(t, model.DefaultDisplayName, devices[1].DisplayName)
	assert.Empty(t, devices[1].Tags)
}

func TestListDevicesPageSize(t *testing.T) {
	var gotMax string

	server := newAPIServer(t, func(e *echo.Echo) {
		e.GET("/v1/devices", func(c echo.Context) error {
			gotMax = c.QueryParam("max")
			return c.JSONBlob(http.StatusOK, []byte(`{"items": []}`))
		})
	})

	client := newTestClient(t, server, &app.Configuration{PageSize: 50})

	_, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "50", gotMax)
}

func TestListDevicesErrors(t *testing.T) {
	tests := []struct {
		testName      string
		handler       echo.HandlerFunc
		expectedError error
		contains      string
	}{
		{
			"status error",
			func(c echo.Context) error {
				return c.String(http.StatusInternalServerError, "internal failure")
			},
			ErrDeviceList,
			"internal failure",
		},
		{
			"second page fails",
			func(c echo.Context) error {
				if c.QueryParam("cursor") == "" {
					c.Response().Header().Set("Link", `</v1/devices?cursor=1>; rel="next"`)
					return c.JSONBlob(http.StatusOK, []byte(`{"items": [{"id": "1"}]}`))
				}

				return c.String(http.StatusForbidden, "forbidden")
			},
			ErrDeviceList,
			"403",
		},
		{
			"undecodable body",
			func(c echo.Context) error {
				return c.String(http.StatusOK, "not json")
			},
			ErrDeviceList,
			"decode",
		},
		{
			"next link loops back",
			func(c echo.Context) error {
				c.Response().Header().Set("Link", `</v1/devices>; rel="next"`)
				return c.JSONBlob(http.StatusOK, []byte(`{"items": [{"id": "1"}]}`))
			},
			ErrPaginationLoop,
			"/v1/devices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			server := newAPIServer(t, func(e *echo.Echo) {
				e.GET("/v1/devices", tt.handler)
			})

			client := newTestClient(t, server, nil)

			devices, err := client.ListDevices(context.Background())
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Nil(t, devices)
		})
	}
}

func TestNextPageURL(t *testing.T) {
	reqURL, _ := url.Parse("https://webexapis.com/v1/devices?max=10")

	tests := []struct {
		testName string
		links    []string
		expected string
	}{
		{"no link header", nil, ""},
		{"no next relation", []string{`<https://webexapis.com/v1/devices?cursor=0>; rel="first"`}, ""},
		{
			"next among other relations",
			[]string{`<https://webexapis.com/v1/devices?cursor=0>; rel="first", <https://webexapis.com/v1/devices?cursor=abc>; rel="next"`},
			"https://webexapis.com/v1/devices?cursor=abc",
		},
		{
			"next in a separate header",
			[]string{`<https://webexapis.com/v1/devices?cursor=0>; rel="prev"`, `<https://webexapis.com/v1/devices?cursor=def>; rel="next"`},
			"https://webexapis.com/v1/devices?cursor=def",
		},
		{"relative link", []string{`</v1/devices?cursor=2>; rel="next"`}, "https://webexapis.com/v1/devices?cursor=2"},
	}

	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			header := http.Header{}
			for _, l := range tt.links {
				header.Add("Link", l)
			}

			got, err := nextPageURL(reqURL, header)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestListDevicesCanceled(t *testing.T) {
	t.Run("canceled between pages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		requests := 0

		server := newAPIServer(t, func(e *echo.Echo) {
			handler := pagedDevices([]string{`{"items": [{"id": "1"}]}`, `{"items": [{"id": "2"}]}`}, true)
			e.GET("/v1/devices", func(c echo.Context) error {
				requests++
				cancel()

				return handler(c)
			})
		})

		client := newTestClient(t, server, nil)

		devices, err := client.ListDevices(ctx)
		assert.ErrorIs(t, err, ErrDeviceList)
		assert.Contains(t, err.Error(), context.Canceled.Error())
		assert.Nil(t, devices)
		assert.Equal(t, 1, requests)
	})

	t.Run("canceled while a page is in flight", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		released := make(chan struct{})
		defer close(released)

		server := newAPIServer(t, func(e *echo.Echo) {
			e.GET("/v1/devices", func(c echo.Context) error {
				if c.QueryParam("cursor") == "" {
					c.Response().Header().Set("Link", `</v1/devices?cursor=1>; rel="next"`)
					return c.JSONBlob(http.StatusOK, []byte(`{"items": [{"id": "1"}]}`))
				}

				cancel()

				select {
				case <-c.Request().Context().Done():
				case <-released:
				}

				return c.NoContent(http.StatusServiceUnavailable)
			})
		})

		client := newTestClient(t, server, nil)

		started := time.Now()
		devices, err := client.ListDevices(ctx)

		assert.ErrorIs(t, err, ErrDeviceList)
		assert.Contains(t, err.Error(), context.Canceled.Error())
		assert.Nil(t, devices)
		assert.Less(t, time.Since(started), 4*time.Second)
	})
}
