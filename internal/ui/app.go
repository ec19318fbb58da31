// Package ui  Setup for the fygallery Application
package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"fygallery/internal/catalog"
	"fygallery/internal/config"
	"fygallery/internal/gallery"
	"fygallery/internal/lazyload"
	"fygallery/internal/router"
	"fygallery/internal/service"
	"fygallery/internal/slideshow"
	"fygallery/internal/viewer"
)

// App represents the whole application with all its windows, widgets and functions
type App struct {
	app     fyne.App
	mainWin fyne.Window
	cfg     config.Config
	log     *logrus.Logger

	logUIManager *LogUIManager
	statusLabel  *widget.Label
	filterSlot   *fyne.Container
	contentSlot  *fyne.Container

	ImageService     *service.ImageService
	slideshowManager *slideshow.SlideshowManager

	// Set once the catalog has loaded.
	state    *gallery.State
	loader   *lazyload.Loader
	viewer   *viewer.Controller
	router   *router.Router
	gallery  *galleryView
	lightbox *lightbox

	ctx    context.Context
	cancel context.CancelFunc
}

// ternaryString returns trueVal when condition holds, falseVal otherwise.
func ternaryString(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}
	return falseVal
}

// formatNumberWithCommas takes an integer and returns a string representation
// with commas as thousands separators.
func formatNumberWithCommas(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		s = s[1:]
	}
	length := len(s)
	if length <= 3 {
		if n < 0 {
			return "-" + s
		}
		return s
	}
	commas := (length - 1) / 3
	result := make([]byte, length+commas)
	for i, j, k := length-1, len(result)-1, 0; ; i, j = i-1, j-1 {
		result[j] = s[i]
		if i == 0 {
			if n < 0 {
				return "-" + string(result)
			}
			return string(result)
		}
		k++
		if k%3 == 0 {
			j--
			result[j] = ','
		}
	}
}

// componentLogger returns the logger handed to one internal package. Its
// lines reach the status bar through the LogUIManager hook.
func (a *App) componentLogger(component string) func(string) {
	return config.ComponentLogger(a.log, component)
}

// warnLogger is componentLogger for failures.
func (a *App) warnLogger(component string) func(string) {
	return config.ComponentLoggerAt(a.log, component, logrus.WarnLevel)
}

// updateStatusBar updates the text of the status bar.
func (a *App) updateStatusBar() {
	if a.statusLabel == nil {
		return
	}
	if a.state == nil {
		a.statusLabel.SetText("Loading catalog...")
		return
	}
	statusText := fmt.Sprintf("%s of %s photos  |  Filter: %s",
		formatNumberWithCommas(int64(a.state.VisibleCount())),
		formatNumberWithCommas(int64(a.state.Len())),
		a.state.Filter())
	if a.viewer != nil && a.viewer.IsOpen() {
		statusText += fmt.Sprintf("  |  Viewing %d / %d", a.viewer.Position()+1, len(a.viewer.Sequence()))
		statusText += ternaryString(a.slideshowManager.IsPaused(), " | Paused", " | Playing")
	}
	a.statusLabel.SetText(statusText)
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	a.statusLabel = widget.NewLabel("")
	logLabel := widget.NewLabel("")
	logLabel.Truncation = fyne.TextTruncateEllipsis
	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { a.logUIManager.ShowPreviousLogMessage() })
	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { a.logUIManager.ShowNextLogMessage() })
	a.logUIManager = NewLogUIManager(logLabel, upBtn, downBtn, DefaultMaxLogMessages)
	a.logUIManager.UpdateLogDisplay()
	a.log.AddHook(a.logUIManager)

	return container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, a.statusLabel, container.NewHBox(upBtn, downBtn), logLabel),
	)
}

func (a *App) buildToolbar() *widget.Toolbar {
	about := NewAbout(a.mainWin, "About fygallery", theme.FileImageIcon())
	return widget.NewToolbar(
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.ComputerIcon(), a.showShortcuts),
		widget.NewToolbarAction(theme.HelpIcon(), about.Show),
	)
}

func (a *App) buildMainUI() fyne.CanvasObject {
	a.filterSlot = container.NewStack()
	a.contentSlot = container.NewStack(container.NewCenter(widget.NewLabel("Loading catalog...")))
	top := container.NewBorder(nil, nil, nil, a.buildToolbar(), a.filterSlot)
	return container.NewBorder(top, a.buildStatusBar(), nil, nil, a.contentSlot)
}

// loadCatalog fetches the catalog once. A failure leaves an empty gallery.
func (a *App) loadCatalog() {
	records, err := catalog.Load(a.ctx, a.cfg.Catalog, a.componentLogger("catalog"))
	if err != nil {
		a.log.WithField("component", "catalog").WithError(err).Errorf("Failed to load catalog %s", a.cfg.Catalog)
		records = nil
	}
	fyne.Do(func() { a.showGallery(records) })
}

// showGallery builds the gallery, viewer and router for records.
func (a *App) showGallery(records []catalog.PhotoRecord) {
	cfg := a.cfg
	a.state = gallery.NewState(records, a.componentLogger("gallery"))
	a.state.SetWarnLogger(a.warnLogger("gallery"))

	a.lightbox = newLightbox(a.ctx, a.mainWin, a.ImageService, a.slideshowManager, cfg.FetchTimeout, a.warnLogger("viewer"))
	a.viewer = viewer.NewController(a.state, a.lightbox, a.componentLogger("viewer"))
	a.router = router.New(a.state, a.viewer, a.slideshowManager, router.Options{
		StrictCategories: cfg.StrictCategories,
		SwipeThreshold:   cfg.SwipeThreshold,
		Logger:           a.componentLogger("router"),
	})
	a.lightbox.router = a.router
	a.lightbox.onChange = a.updateStatusBar

	// The grid must hide filtered-out cells before the loader re-measures.
	a.gallery = newGalleryView(a.state, float32(cfg.ThumbnailSize))
	a.gallery.router = a.router

	retries := cfg.FetchRetries
	if retries == 0 {
		retries = -1
	}
	a.loader = lazyload.New(a.state, a.ImageService, a.gallery, lazyload.Options{
		Margin:       cfg.ProximityMargin,
		RescanDelay:  cfg.RescanDelay,
		MaxRetries:   retries,
		FetchTimeout: cfg.FetchTimeout,
		Dispatch:     fyne.Do,
		Logger:       a.componentLogger("lazyload"),
		Warn:         a.warnLogger("lazyload"),
		OnStateChange: func(item *gallery.Item) {
			a.gallery.RefreshItem(item)
			a.viewer.Refresh(item)
		},
	})
	a.gallery.onViewportChange = a.loader.Check
	a.state.OnFilterChange(func(string) { a.updateStatusBar() })

	buttons, bar := buildFilterBar(a.state)
	a.router.BindFilters(buttons...)

	a.filterSlot.Objects = []fyne.CanvasObject{bar}
	a.filterSlot.Refresh()
	a.contentSlot.Objects = []fyne.CanvasObject{a.gallery.scroll}
	a.contentSlot.Refresh()

	a.loader.Rescan()
	a.updateStatusBar()
	a.log.WithField("component", "gallery").Infof("Showing %d photos from %s", a.state.Len(), cfg.Catalog)
}

func (a *App) shutdown() {
	a.cancel()
	if a.loader != nil {
		a.loader.Close()
	}
	a.log.Info("fygallery closing")
}

// CreateApplication is the GUI entrypoint
func CreateApplication(cfg config.Config, logger *logrus.Logger) {
	a := app.NewWithID("com.github.fygallery")
	a.SetIcon(theme.FileImageIcon())

	currentTheme := a.Settings().Theme()
	a.Settings().SetTheme(NewGalleryTheme(currentTheme))

	ui := &App{app: a, cfg: cfg, log: logger}
	ui.ctx, ui.cancel = context.WithCancel(context.Background())
	ui.ImageService = service.NewImageService(cfg.Catalog, cfg.ThumbnailSize)
	ui.slideshowManager = slideshow.NewSlideshowManager(cfg.SlideshowInterval, ui.componentLogger("slideshow"))

	ui.mainWin = a.NewWindow("fygallery")
	ui.mainWin.SetCloseIntercept(func() {
		ui.shutdown()
		ui.mainWin.Close()
	})
	ui.mainWin.SetContent(ui.buildMainUI())
	ui.buildKeyboardShortcuts()
	ui.updateStatusBar()

	go ui.loadCatalog()
	go ui.slideshowManager.Run(ui.ctx, func() {
		fyne.Do(func() {
			if ui.router == nil {
				return
			}
			ui.router.AdvanceSlideshow()
			ui.updateStatusBar()
		})
	})

	ui.mainWin.Resize(fyne.NewSize(1024, 768))
	ui.mainWin.CenterOnScreen()
	ui.mainWin.ShowAndRun()
}
