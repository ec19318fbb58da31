package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

const DefaultMaxLogMessages = 100

// LogUIManager is a logrus hook that keeps the latest log lines and shows one
// of them in the status bar. The up and down buttons browse older and newer
// lines.
type LogUIManager struct {
	messages []string
	index    int
	limit    int

	label    *widget.Label
	olderBtn *widget.Button
	newerBtn *widget.Button
}

var _ logrus.Hook = (*LogUIManager)(nil)

func NewLogUIManager(label *widget.Label, olderBtn, newerBtn *widget.Button, limit int) *LogUIManager {
	if limit <= 0 {
		limit = DefaultMaxLogMessages
	}
	return &LogUIManager{
		messages: make([]string, 0, limit),
		index:    -1,
		limit:    limit,
		label:    label,
		olderBtn: olderBtn,
		newerBtn: newerBtn,
	}
}

// Levels limits the status bar to info and above.
func (lm *LogUIManager) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel}
}

// Fire queues entry for display on the UI goroutine.
func (lm *LogUIManager) Fire(entry *logrus.Entry) error {
	line := entryLine(entry)
	fyne.Do(func() { lm.AddLogMessage(line) })
	return nil
}

// entryLine is the status bar text for entry.
func entryLine(entry *logrus.Entry) string {
	line := entry.Message
	if c, ok := entry.Data["component"]; ok {
		line = fmt.Sprintf("%v: %s", c, line)
	}
	if entry.Level <= logrus.WarnLevel {
		line = fmt.Sprintf("[%s] %s", entry.Level, line)
	}
	return line
}

// AddLogMessage appends message, dropping the oldest past the limit, and
// shows it. Must run on the UI goroutine.
func (lm *LogUIManager) AddLogMessage(message string) {
	lm.messages = append(lm.messages, message)
	if over := len(lm.messages) - lm.limit; over > 0 {
		lm.messages = lm.messages[over:]
	}
	lm.index = len(lm.messages) - 1
	lm.UpdateLogDisplay()
}

// Messages returns the retained messages, oldest first.
func (lm *LogUIManager) Messages() []string { return lm.messages }

// Current returns the message on display, or "" when there is none.
func (lm *LogUIManager) Current() string {
	if lm.index < 0 || lm.index >= len(lm.messages) {
		return ""
	}
	return lm.messages[lm.index]
}

func (lm *LogUIManager) UpdateLogDisplay() {
	if lm.label == nil || lm.olderBtn == nil || lm.newerBtn == nil {
		return
	}
	n := len(lm.messages)
	if n == 0 {
		lm.label.SetText("")
		lm.olderBtn.Disable()
		lm.newerBtn.Disable()
		return
	}
	lm.index = max(0, min(lm.index, n-1))

	lm.label.SetText(fmt.Sprintf("[%d/%d] %s", lm.index+1, n, lm.messages[lm.index]))
	setEnabled(lm.olderBtn, lm.index > 0)
	setEnabled(lm.newerBtn, lm.index < n-1)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (lm *LogUIManager) ShowPreviousLogMessage() {
	if lm.index > 0 {
		lm.index--
		lm.UpdateLogDisplay()
	}
}

func (lm *LogUIManager) ShowNextLogMessage() {
	if lm.index < len(lm.messages)-1 {
		lm.index++
		lm.UpdateLogDisplay()
	}
}
