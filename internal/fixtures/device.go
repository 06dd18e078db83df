package fixtures

import (
	"github.com/jinzhu/copier"
	"github.com/metal-toolbox/xapictl/internal/model"
)

const (
	TagConferenceRoom = "conference-room"
	TagLobby          = "lobby"
)

var (
	// Devices is the device list returned by the fake API, three of them carry the conference-room tag.
	Devices = model.Devices{
		{
			ID:               "Y2lzY29zcGFyazovL3VzL0RFVklDRS8x",
			DisplayName:      "Board Room",
			Tags:             []string{TagConferenceRoom, "floor-2"},
			Product:          "Cisco Room Kit Pro",
			Serial:           "FOC2401N0AA",
			ConnectionStatus: "connected",
			OrgID:            "Y2lzY29zcGFyazovL3VzL09SR0FOSVpBVElPTi8x",
			PlaceID:          "Y2lzY29zcGFyazovL3VzL1BMQUNFLzE",
		},
		{
			ID:               "Y2lzY29zcGFyazovL3VzL0RFVklDRS8y",
			DisplayName:      "Reception",
			Tags:             []string{TagLobby},
			Product:          "Cisco Desk Pro",
			Serial:           "FOC2401N0AB",
			ConnectionStatus: "connected",
			OrgID:            "Y2lzY29zcGFyazovL3VzL09SR0FOSVpBVElPTi8x",
		},
		{
			ID:               "Y2lzY29zcGFyazovL3VzL0RFVklDRS8z",
			DisplayName:      "Huddle 3",
			Tags:             []string{TagConferenceRoom},
			Product:          "Cisco Room Bar",
			Serial:           "FOC2401N0AC",
			ConnectionStatus: "disconnected",
			OrgID:            "Y2lzY29zcGFyazovL3VzL09SR0FOSVpBVElPTi8x",
		},
		{
			ID:               "Y2lzY29zcGFyazovL3VzL0RFVklDRS80",
			DisplayName:      model.DefaultDisplayName,
			Tags:             []string{},
			Product:          "Cisco Board Pro",
			ConnectionStatus: "connected",
		},
		{
			ID:               "Y2lzY29zcGFyazovL3VzL0RFVklDRS81",
			DisplayName:      "Training Room",
			Tags:             []string{"floor-1", TagConferenceRoom},
			Product:          "Cisco Room Kit",
			Serial:           "FOC2401N0AE",
			ConnectionStatus: "connected",
			OrgID:            "Y2lzY29zcGFyazovL3VzL09SR0FOSVpBVElPTi8x",
		},
	}
)

func copyDevices(src model.Devices) model.Devices {
	dst := model.Devices{}

	copyOptions := copier.Option{DeepCopy: true}

	err := copier.CopyWithOption(&dst, &src, copyOptions)
	if err != nil {
		panic(err)
	}

	return dst
}

// NewDevices returns a deep copy of the Devices fixture which tests are free to modify.
func NewDevices() model.Devices {
	return copyDevices(Devices)
}

// NewDevicesWithTag returns a deep copy of the Devices fixture entries carrying the tag.
func NewDevicesWithTag(tag string) model.Devices {
	return copyDevices(Devices.WithTag(tag))
}
