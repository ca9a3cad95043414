// Package ui is the GTK4 and system tray front end of Leaf VPN.
//
// It supplies the platform pieces the core shell drives:
//
//   - a window handle over the main gtk.ApplicationWindow
//   - a tray icon setter over fyne.io/systray
//   - a desktop notifier over org.freedesktop.Notifications
//
// # Thread Safety
//
// GTK operations must execute on the main thread. Calls arriving from
// tray callbacks, the engine reader or the prober are marshalled with
// glib.IdleAdd. The window handle waits for the main loop to answer so
// the window coordinator sees a consistent state.
//
// Window close requests are intercepted and turned into a hide; the
// application only exits through the tray's Quit item.
package ui
