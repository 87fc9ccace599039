package rendering

import "github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"

// Viewport describes the preview frame for a device.
type Viewport struct {
	Device   document.Device `json:"device"`
	MaxWidth string          `json:"maxWidth"`
	Class    string          `json:"class"`
}

const viewportBaseClass = "bg-white shadow-2xl transition-all duration-300 relative flex flex-col min-h-[85vh] mx-auto"

// GetViewport returns the frame for the context's device.
func (ctx *RenderContext) GetViewport() Viewport {
	return ViewportFor(ctx.Device)
}

// ViewportFor returns the frame for a device, falling back to desktop.
func ViewportFor(device document.Device) Viewport {
	switch device {
	case document.DeviceMobile:
		return Viewport{Device: device, MaxWidth: "375px", Class: viewportBaseClass + " mobile max-w-[375px]"}
	case document.DeviceTablet:
		return Viewport{Device: device, MaxWidth: "768px", Class: viewportBaseClass + " tablet max-w-[768px]"}
	default:
		return Viewport{Device: document.DeviceDesktop, MaxWidth: "100%", Class: viewportBaseClass + " desktop w-full"}
	}
}
