package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvenmobile/sparky/internal/config"
	"github.com/stvenmobile/sparky/internal/panel"
	"github.com/stvenmobile/sparky/internal/surface"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sparky dev\n", out)
}

func TestConfigInitThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+path)
	assert.Contains(t, out, "fps: 40")

	_, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestConfigShow_RejectsInvalidFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)

	display = "hologram"
	defer func() { display = "" }()
	_, err = execute(t, "config", "show", "--config", path)
	assert.ErrorContains(t, err, "invalid configuration")
}

type fakePanel struct {
	draws  []image.Rectangle
	closed bool
}

func (p *fakePanel) String() string          { return "fake-panel" }
func (p *fakePanel) Halt() error             { return nil }
func (p *fakePanel) ColorModel() color.Model { return color.RGBAModel }
func (p *fakePanel) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (p *fakePanel) Close() error {
	p.closed = true
	return nil
}

func (p *fakePanel) Draw(r image.Rectangle, _ image.Image, _ image.Point) error {
	p.draws = append(p.draws, r)
	return nil
}

func TestAttachPanel_FlushesDirtyRegions(t *testing.T) {
	dev := &fakePanel{}
	var got panel.Config
	defer func(orig func(panel.Config) (panelDevice, error)) { openPanel = orig }(openPanel)
	openPanel = func(cfg panel.Config) (panelDevice, error) {
		got = cfg
		return dev, nil
	}

	cfg := config.DefaultConfig()
	cfg.Display.Backend = config.BackendPanel
	require.NoError(t, cfg.Validate())

	fb := surface.NewFramebuffer(cfg.Display.Width, cfg.Display.Height)
	d, err := attachPanel(fb, cfg.Display.Panel)
	require.NoError(t, err)
	assert.Equal(t, cfg.Display.Panel, got)

	surface.Batch(fb, func() {
		fb.FillRect(4, 4, 8, 8, surface.White)
		fb.FillRect(200, 200, 8, 8, surface.White)
	})
	require.Len(t, dev.draws, 1)
	assert.Equal(t, image.Rect(4, 4, 128, 64), dev.draws[0], "clipped to the panel")

	require.NoError(t, d.Close())
	assert.True(t, dev.closed)
}

func TestAttachPanel_OpenError(t *testing.T) {
	defer func(orig func(panel.Config) (panelDevice, error)) { openPanel = orig }(openPanel)
	openPanel = func(panel.Config) (panelDevice, error) { return nil, errors.New("no i2c bus") }

	_, err := attachPanel(surface.NewFramebuffer(8, 8), panel.DefaultConfig())
	assert.ErrorContains(t, err, "no i2c bus")
}

func TestConfigShow_AcceptsPanelBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)

	display = "panel"
	defer func() { display = "" }()
	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "backend: panel")
	assert.Contains(t, out, "driver: ssd1306")
}
