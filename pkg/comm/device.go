package comm

// DeviceRef identifies a device on a shared transport.
type DeviceRef struct {
	// Type is the device type, e.g. "btnlink".
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta is published for discovery.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Variant     string            `json:"variant,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DeviceInfo provides information of a device.
type DeviceInfo struct {
	Ref  DeviceRef
	Meta DeviceMeta
}
