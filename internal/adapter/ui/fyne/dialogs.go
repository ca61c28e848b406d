package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// voiceFileExtensions lists the formats the file-backed voice session decodes.
var voiceFileExtensions = []string{".wav"}

// VoiceFileDialog is a helper for choosing the audio file a call streams.
type VoiceFileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewVoiceFileDialog creates a new voice file dialog.
func NewVoiceFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *VoiceFileDialog {
	return &VoiceFileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog.
func (d *VoiceFileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(voiceFileExtensions))
	fd.Show()
}
