package model

import (
	"encoding/json"

	"golang.org/x/exp/slices"
)

// Device is a managed endpoint as listed by the devices API.
//
// nolint:govet // fieldalignment struct is easier to read in the current format
type Device struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Tags        []string `json:"tags,omitempty"`

	// informational attributes, not used for selection
	Product          string `json:"product,omitempty"`
	Serial           string `json:"serial,omitempty"`
	ConnectionStatus string `json:"connectionStatus,omitempty"`
	OrgID            string `json:"orgId,omitempty"`
	PlaceID          string `json:"placeId,omitempty"`
}

// UnmarshalJSON decodes a device record, the DisplayName defaults to "Unknown"
// when the record does not include one.
func (d *Device) UnmarshalJSON(b []byte) error {
	type device Device

	aux := struct {
		*device
		DisplayName *string `json:"displayName"`
	}{device: (*device)(d)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if aux.DisplayName == nil {
		d.DisplayName = DefaultDisplayName
	} else {
		d.DisplayName = *aux.DisplayName
	}

	return nil
}

// HasTag returns true when the device is labeled with the tag, the match is exact.
func (d *Device) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// Devices is an ordered collection of devices as returned by the API.
type Devices []Device

// WithTag returns the devices labeled with the given tag, in their original order.
func (d Devices) WithTag(tag string) Devices {
	found := Devices{}

	for idx := range d {
		if d[idx].HasTag(tag) {
			found = append(found, d[idx])
		}
	}

	return found
}

// IDs returns the device identifiers in order.
func (d Devices) IDs() []string {
	ids := make([]string, 0, len(d))
	for idx := range d {
		ids = append(ids, d[idx].ID)
	}

	return ids
}
