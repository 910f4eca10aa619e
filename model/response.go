package model

// StateResponse is the JSON view of one browser session.
type StateResponse struct {
	Success     bool           `json:"success"`
	Outcome     string         `json:"outcome"`
	Loading     bool           `json:"loading"`
	Image       *ImageResponse `json:"image,omitempty"`
	Error       string         `json:"error,omitempty"`
	Action      string         `json:"action"`
	Slots       []SlotResponse `json:"slots"`
	CanDispatch bool           `json:"canDispatch"`
}

// ImageResponse carries the composite image as a displayable data URL.
type ImageResponse struct {
	DataURL  string `json:"dataUrl"`
	MimeType string `json:"mimeType"`
}

type SlotResponse struct {
	Slot     int    `json:"slot"`
	Filled   bool   `json:"filled"`
	MimeType string `json:"mimeType,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ActionsResponse struct {
	Actions []string `json:"actions"`
	Default string   `json:"default"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
