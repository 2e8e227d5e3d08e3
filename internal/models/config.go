package models

// Dimensions is a resize target. A zero value on either axis means
// "derive from the source" (aspect preserving when the other axis is
// set, native size when both are zero).
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is a crop rectangle expressed in the coordinate space of the
// displayed preview, not in source pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ConversionConfig is the per-batch form state. Values persist between
// conversions; a nil Resize/Crop means the operation is not requested.
type ConversionConfig struct {
	TargetFormat string `json:"targetFormat"`

	Resize *Dimensions `json:"resize,omitempty"`
	Crop   *Rect       `json:"crop,omitempty"`

	// On-screen size of the preview the crop rectangle was drawn
	// against. Zero means the preview was shown at natural size.
	DisplayWidth  int `json:"displayWidth,omitempty"`
	DisplayHeight int `json:"displayHeight,omitempty"`

	// Encode quality, 10-100. Out of range values fall back to the
	// default of 92.
	Quality int `json:"quality,omitempty"`
}
