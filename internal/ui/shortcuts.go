// Package ui  Shortcuts for keyboard actions
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"fygallery/internal/router"
)

// routerKey maps a Fyne key to the keys the router handles.
func routerKey(name fyne.KeyName) router.Key {
	switch name {
	case fyne.KeyEscape:
		return router.KeyEscape
	case fyne.KeyLeft:
		return router.KeyArrowLeft
	case fyne.KeyRight:
		return router.KeyArrowRight
	case fyne.KeySpace, fyne.KeyP:
		return router.KeySpace
	default:
		return router.KeyUnknown
	}
}

func (a *App) buildKeyboardShortcuts() {
	// ctrl+q to quit application
	a.mainWin.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: fyne.KeyModifierShortcutDefault,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	a.mainWin.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		if a.router == nil {
			return
		}
		if a.router.KeyPress(routerKey(key.Name)) {
			a.lightbox.updatePlayButton()
			a.updateStatusBar()
		}
	})
}

func (a *App) showShortcuts() {
	shortcuts := []string{
		"Ctrl+Q",
		"Arrow Right", "Arrow Left",
		"Swipe left / right",
		"P or Space", "Esc",
	}
	descriptions := []string{
		"Quit Application",
		"Next Photo", "Previous Photo",
		"Next / Previous Photo",
		"Play / Pause Slideshow", "Close Viewer",
	}

	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(descriptions) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0
			dataRowIndex := id.Row - 1

			if id.Col == 0 {
				label.SetText(ternaryString(isHeader, "Description", descriptionAt(descriptions, dataRowIndex)))
			} else {
				label.SetText(ternaryString(isHeader, "Shortcut", descriptionAt(shortcuts, dataRowIndex)))
			}
			label.TextStyle.Bold = isHeader
		},
	)
	table.SetColumnWidth(0, 250)
	table.SetColumnWidth(1, 200)
	win.SetContent(table)
	win.Resize(fyne.NewSize(470, 300))
	win.Show()
}

func descriptionAt(list []string, i int) string {
	if i < 0 || i >= len(list) {
		return ""
	}
	return list[i]
}
