package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles for the status page.
const appCSS = `
.status-card {
    border-radius: 12px;
    margin: 6px 12px;
    padding: 10px;
    border: 1px solid alpha(currentColor, 0.15);
}

.status-title {
    font-weight: 600;
    font-size: 13px;
}

.status-value {
    opacity: 0.8;
}

.status-ok {
    color: #2ec27e;
    font-weight: 600;
}

.status-warning {
    color: #e5a50a;
    font-weight: 600;
}

.status-error {
    color: #e01b24;
    font-weight: 600;
}

.status-idle {
    color: alpha(currentColor, 0.55);
}

button.pill {
    border-radius: 9999px;
    padding: 6px 18px;
}
`

// statusClasses lists every class setStatusClass may apply.
var statusClasses = []string{"status-ok", "status-warning", "status-error", "status-idle"}

// LoadStyles installs the application stylesheet on the default display.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// setStatusClass replaces the status class on label.
func setStatusClass(label *gtk.Label, class string) {
	for _, c := range statusClasses {
		label.RemoveCSSClass(c)
	}
	label.AddCSSClass(class)
}
