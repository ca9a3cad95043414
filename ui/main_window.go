package ui

import (
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/status"
)

// MainWindow is the status page shown from the tray.
type MainWindow struct {
	app    *Application
	window *gtk.ApplicationWindow

	engineLabel       *gtk.Label
	proxyLabel        *gtk.Label
	connectivityLabel *gtk.Label
	subscriptionLabel *gtk.Label
	proxyButton       *gtk.Button
	statusLabel       *gtk.Label
}

// NewMainWindow creates the main window. It is created hidden.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{app: app}

	mw.window = gtk.NewApplicationWindow(app.app)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetResizable(false)
	mw.window.SetIconName("leaf-vpn")

	// Closing hides the window; the coordinator decides how.
	mw.window.ConnectCloseRequest(func() bool {
		go app.core.Window().InterceptClose()
		return true
	})

	mw.createLayout()
	mw.render(app.core.Cache().Snapshot())
	return mw
}

func (mw *MainWindow) createLayout() {
	headerBar := gtk.NewHeaderBar()

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	menuButton.SetMenuModel(mw.createMenu())
	headerBar.PackEnd(menuButton)
	mw.window.SetTitlebar(headerBar)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 6)
	mainBox.SetMarginTop(common.DialogMargin / 2)
	mainBox.SetMarginBottom(common.DialogMargin / 2)

	mw.engineLabel = mw.addRow(mainBox, "Core")
	mw.proxyLabel = mw.addRow(mainBox, "Proxy")
	mw.connectivityLabel = mw.addRow(mainBox, "Connectivity")
	mw.subscriptionLabel = mw.addRow(mainBox, "Subscription")

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 8)
	buttons.SetHAlign(gtk.AlignCenter)
	buttons.SetMarginTop(12)

	startButton := gtk.NewButtonWithLabel("Start Core")
	startButton.AddCSSClass("pill")
	startButton.ConnectClicked(func() {
		mw.run("Starting core...", mw.app.core.StartEngine)
	})
	buttons.Append(startButton)

	mw.proxyButton = gtk.NewButtonWithLabel("Connect")
	mw.proxyButton.AddCSSClass("pill")
	mw.proxyButton.AddCSSClass("suggested-action")
	mw.proxyButton.ConnectClicked(mw.onProxyClicked)
	buttons.Append(mw.proxyButton)

	updateButton := gtk.NewButtonWithLabel("Update")
	updateButton.AddCSSClass("pill")
	updateButton.SetTooltipText("Update subscription")
	updateButton.ConnectClicked(func() {
		mw.run("Updating subscription...", mw.app.core.UpdateSubscription)
	})
	buttons.Append(updateButton)

	mainBox.Append(buttons)

	mw.statusLabel = gtk.NewLabel("Ready")
	mw.statusLabel.SetXAlign(0)
	mw.statusLabel.SetMarginStart(12)
	mw.statusLabel.SetMarginTop(6)
	mw.statusLabel.AddCSSClass("dim-label")
	mainBox.Append(mw.statusLabel)

	mw.window.SetChild(mainBox)
}

func (mw *MainWindow) addRow(parent *gtk.Box, title string) *gtk.Label {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.AddCSSClass("status-card")

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("status-title")
	titleLabel.SetXAlign(0)
	titleLabel.SetHExpand(true)
	row.Append(titleLabel)

	value := gtk.NewLabel("Unknown")
	value.AddCSSClass("status-value")
	value.SetXAlign(1)
	row.Append(value)

	parent.Append(row)
	return value
}

func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()
	menu.Append("Hide Window", "app.hide")
	menu.Append("About", "app.about")
	menu.Append("Quit", "app.quit")

	hideAction := gio.NewSimpleAction("hide", nil)
	hideAction.ConnectActivate(func(_ *glib.Variant) {
		go mw.app.core.Window().Hide()
	})
	mw.app.app.AddAction(hideAction)
	mw.app.app.SetAccelsForAction("app.hide", []string{"<Control>w"})

	aboutAction := gio.NewSimpleAction("about", nil)
	aboutAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onAbout()
	})
	mw.app.app.AddAction(aboutAction)

	quitAction := gio.NewSimpleAction("quit", nil)
	quitAction.ConnectActivate(func(_ *glib.Variant) {
		go mw.app.core.Quit().Request()
	})
	mw.app.app.AddAction(quitAction)
	mw.app.app.SetAccelsForAction("app.quit", []string{"<Control>q"})

	return menu
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)
	about.SetProgramName(common.AppName)
	about.SetLogoIconName("leaf-vpn")
	about.SetVersion(mw.app.version)
	about.SetComments("Desktop shell for the leaf proxy engine.")
	about.SetWebsite("https://github.com/yllada/leaf-vpn")
	about.SetLicenseType(gtk.LicenseMITX11)
	about.Show()
}

func (mw *MainWindow) onProxyClicked() {
	proxy, ok := mw.app.core.Cache().Proxy()
	if ok && proxy.IsRunning() {
		mw.run("Disconnecting...", mw.app.core.StopProxy)
		return
	}
	mw.run("Connecting...", mw.app.core.RunProxy)
}

// run performs an engine request off the main loop.
func (mw *MainWindow) run(pending string, fn func() error) {
	mw.SetStatus(pending)
	go func() {
		if err := fn(); err != nil {
			common.LogWarn("Request failed: %v", err)
			glib.IdleAdd(func() {
				mw.SetStatus(err.Error())
			})
		}
	}()
}

// SetStatus updates the status line.
func (mw *MainWindow) SetStatus(text string) {
	mw.statusLabel.SetText(text)
}

// onStatus is a dispatcher listener; it may run on any goroutine.
func (mw *MainWindow) onStatus(_ status.Topic, _ status.Status) {
	snap := mw.app.core.Cache().Snapshot()
	glib.IdleAdd(func() {
		mw.render(snap)
	})
}

func (mw *MainWindow) render(snap status.Snapshot) {
	switch {
	case snap.Engine == nil:
		mw.setValue(mw.engineLabel, "Unknown", "status-idle")
	case snap.Engine.IsError():
		mw.setValue(mw.engineLabel, snap.Engine.String(), "status-error")
	case snap.Engine.State == status.EngineStarted:
		mw.setValue(mw.engineLabel, snap.Engine.String(), "status-ok")
	default:
		mw.setValue(mw.engineLabel, snap.Engine.String(), "status-idle")
	}

	switch {
	case snap.Proxy == nil:
		mw.setValue(mw.proxyLabel, "Unknown", "status-idle")
	case snap.Proxy.IsError():
		mw.setValue(mw.proxyLabel, snap.Proxy.String(), "status-error")
	case snap.Proxy.State == status.ProxyStarted:
		mw.setValue(mw.proxyLabel, snap.Proxy.String(), "status-ok")
	case snap.Proxy.State == status.ProxyStarting, snap.Proxy.State == status.ProxyStopping:
		mw.setValue(mw.proxyLabel, snap.Proxy.String(), "status-warning")
	default:
		mw.setValue(mw.proxyLabel, snap.Proxy.String(), "status-idle")
	}

	switch {
	case snap.Connectivity == nil:
		mw.setValue(mw.connectivityLabel, "Unknown", "status-idle")
	case *snap.Connectivity == status.ConnectivityLost:
		mw.setValue(mw.connectivityLabel, snap.Connectivity.String(), "status-warning")
	default:
		mw.setValue(mw.connectivityLabel, snap.Connectivity.String(), "status-ok")
	}

	switch {
	case snap.Subscription == nil:
		mw.setValue(mw.subscriptionLabel, "Unknown", "status-idle")
	case snap.Subscription.State == status.SubscriptionFailed:
		mw.setValue(mw.subscriptionLabel, snap.Subscription.String(), "status-error")
	case snap.Subscription.State == status.SubscriptionSucceeded:
		mw.setValue(mw.subscriptionLabel, snap.Subscription.String(), "status-ok")
	default:
		mw.setValue(mw.subscriptionLabel, snap.Subscription.String(), "status-idle")
	}

	if snap.Proxy != nil && snap.Proxy.IsRunning() {
		mw.proxyButton.SetLabel("Disconnect")
		mw.proxyButton.RemoveCSSClass("suggested-action")
		mw.proxyButton.AddCSSClass("destructive-action")
	} else {
		mw.proxyButton.SetLabel("Connect")
		mw.proxyButton.RemoveCSSClass("destructive-action")
		mw.proxyButton.AddCSSClass("suggested-action")
	}
	mw.proxyButton.SetSensitive(snap.Engine != nil && snap.Engine.State == status.EngineStarted)
}

func (mw *MainWindow) setValue(label *gtk.Label, text, class string) {
	label.SetText(text)
	setStatusClass(label, class)
}
