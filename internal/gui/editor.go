package gui

import (
	"bytes"
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/keagan/clipbench/internal/config"
	"github.com/keagan/clipbench/internal/media"
	"github.com/keagan/clipbench/internal/thumbs"
	"github.com/keagan/clipbench/internal/timeline"
)

// Editor is the interactive timeline window: scrubbing slider, thumbnail
// strip and chunk marking controls, all driven by one timeline.Session.
type Editor struct {
	logger  zerolog.Logger
	cfg     *config.Config
	session *timeline.Session

	window    fyne.Window
	slider    *widget.Slider
	timeLabel *widget.Label
	fileLabel *widget.Label
	strip     *fyne.Container
	chunkList *widget.List
	chunks    []timeline.Chunk
}

// Run opens the editor window and blocks until it is closed. When initial
// is non-empty that file is loaded immediately.
func Run(logger zerolog.Logger, cfg *config.Config, initial string) {
	ed := &Editor{
		logger: logger.With().Str("component", "gui").Logger(),
		cfg:    cfg,
	}

	a := app.NewWithID("clipbench")
	ed.window = a.NewWindow("clipbench")
	ed.window.Resize(fyne.NewSize(800, 500))

	ed.fileLabel = widget.NewLabel("No video loaded")
	ed.timeLabel = widget.NewLabel("00:00 / 00:00")
	ed.strip = container.NewHBox()

	ed.slider = widget.NewSlider(0, 1)
	ed.slider.Step = 0.1
	ed.slider.OnChangeEnded = ed.seekTo

	markButton := widget.NewButton("Mark Chunk", ed.markChunk)

	ed.chunkList = widget.NewList(
		func() int { return len(ed.chunks) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			remove := widget.NewButton("Remove", nil)
			return container.NewBorder(nil, nil, nil, remove, label)
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			c := ed.chunks[i]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(fmt.Sprintf("%s - %s",
				timeline.FormatTime(c.Start), timeline.FormatTime(c.End)))
			row.Objects[1].(*widget.Button).OnTapped = func() {
				ed.session.RemoveChunk(c.ID)
				ed.refreshChunks()
			}
		},
	)

	loadButton := widget.NewButton("Load Video", func() {
		fd := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if ur == nil || err != nil {
				return
			}
			ed.load(ur.URI().Path())
		}, ed.window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".mp4", ".mov", ".mkv", ".webm"}))
		fd.Show()
	})

	ed.window.SetContent(container.NewBorder(
		container.NewVBox(ed.fileLabel, ed.slider, container.NewHBox(ed.timeLabel, markButton, loadButton), ed.strip),
		nil, nil, nil,
		ed.chunkList,
	))

	if initial != "" {
		ed.load(initial)
	}

	ed.window.ShowAndRun()
}

func (ed *Editor) load(path string) {
	if ed.session != nil {
		ed.session.Close()
	}

	src, err := media.Open(ed.logger, path, media.Options{
		FFmpegPath: ed.cfg.FFmpeg.BinaryPath,
		ProbePath:  ed.cfg.FFmpeg.ProbePath,
	})
	if err != nil {
		dialog.ShowError(err, ed.window)
		return
	}

	ed.session = timeline.NewSession(ed.logger, src, timeline.SessionOptions{
		ThumbnailCount: ed.cfg.Thumbnails.Count,
		MinChunkLength: ed.cfg.Chunks.MinLength,
		MaxChunkLength: ed.cfg.Chunks.MaxLength,
		Sampler: thumbs.Options{
			Width:       ed.cfg.Thumbnails.Width,
			Height:      ed.cfg.Thumbnails.Height,
			Quality:     ed.cfg.Thumbnails.Quality,
			SettleDelay: ed.cfg.Thumbnails.SettleDelayDuration(),
			SeekTimeout: ed.cfg.Seek.TimeoutDuration(),
		},
	})
	ed.fileLabel.SetText("Loaded: " + path)

	go func() {
		if err := src.Refresh(context.Background()); err != nil {
			ed.logger.Error().Err(err).Str("file", path).Msg("probe failed")
			fyne.Do(func() { dialog.ShowError(err, ed.window) })
			return
		}
		fyne.Do(ed.refreshAll)
	}()
}

func (ed *Editor) seekTo(t float64) {
	if ed.session == nil {
		return
	}
	src := ed.session.Source()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ed.cfg.Seek.TimeoutDuration())
		defer cancel()
		if err := media.SeekTo(ctx, src, t, ed.cfg.Seek.TimeoutDuration()); err != nil {
			ed.logger.Warn().Err(err).Float64("target", t).Msg("scrub seek failed")
			return
		}
		fyne.Do(ed.updateTimeLabel)
	}()
}

func (ed *Editor) markChunk() {
	if ed.session == nil {
		return
	}
	if _, err := ed.session.AddChunkAtPlayhead(); err != nil {
		dialog.ShowError(err, ed.window)
		return
	}
	ed.refreshChunks()
}

func (ed *Editor) refreshAll() {
	if dur, ok := ed.session.Duration(); ok {
		ed.slider.Max = dur
		ed.slider.Refresh()
	}
	ed.updateTimeLabel()
	ed.refreshStrip()
	ed.refreshChunks()
}

func (ed *Editor) updateTimeLabel() {
	cur := ed.session.Source().CurrentTime()
	dur, _ := ed.session.Duration()
	ed.timeLabel.SetText(timeline.FormatTime(cur) + " / " + timeline.FormatTime(dur))
}

func (ed *Editor) refreshStrip() {
	ed.strip.RemoveAll()
	for _, t := range ed.session.Thumbnails() {
		img := canvas.NewImageFromReader(bytes.NewReader(t.JPEG), fmt.Sprintf("thumb_%d.jpg", t.Index))
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(float32(ed.cfg.Thumbnails.Width)/2, float32(ed.cfg.Thumbnails.Height)/2))
		ed.strip.Add(img)
	}
	ed.strip.Refresh()
}

func (ed *Editor) refreshChunks() {
	ed.chunks = ed.session.Chunks()
	ed.chunkList.Refresh()
}
