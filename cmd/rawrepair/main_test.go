package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaming/rawrepair-go/rawfile"
	"github.com/weaming/rawrepair-go/repair"
)

func TestConvertExt(t *testing.T) {
	ext, err := convertExt("tiff")
	require.NoError(t, err)
	assert.Equal(t, ".TIFF", ext)

	ext, err = convertExt("JPEG")
	require.NoError(t, err)
	assert.Equal(t, ".JPG", ext)

	_, err = convertExt("png")
	assert.Error(t, err)
}

func TestNewReportJSON(t *testing.T) {
	report := &repair.Report{
		Reference:   "good/IMG_0001.CR2",
		Format:      rawfile.FormatCR2,
		Camera:      rawfile.CameraInfo{Make: "Canon", Model: "EOS R5"},
		RepairedDir: "in/Repaired",
		Files: []repair.FileResult{
			{Source: "in/IMG_0002.CR2.locked", Repaired: "in/Repaired/IMG_0002.CR2", Size: 1024},
		},
	}

	out := newReportJSON(report, nil)
	assert.Equal(t, "CR2", out.Format)
	assert.Equal(t, "Canon EOS R5", out.Camera)
	require.Len(t, out.Files, 1)
	assert.Equal(t, int64(1024), out.Files[0].Size)
	assert.NotEmpty(t, out.Summary)
	assert.Empty(t, out.Error)

	failed := newReportJSON(nil, &repair.FileError{File: "x.CR2.locked", Err: rawfile.ErrMarkerNotFound})
	assert.Equal(t, "MarkerNotFound", failed.ErrorKind)
	assert.NotNil(t, failed.Files)
	assert.Empty(t, failed.Summary)
}

func TestTUIModel(t *testing.T) {
	m := newTUIModel(repair.Options{Reference: "ref.NEF", InputDir: "in"})

	next, cmd := m.Update(progressMsg(40))
	assert.Nil(t, cmd)
	m = next.(tuiModel)
	assert.Equal(t, 40, m.percent)

	for i := 0; i < tuiLogLines+3; i++ {
		next, _ = m.Update(logMsg("line"))
		m = next.(tuiModel)
	}
	assert.Len(t, m.logs, tuiLogLines)

	// 批处理结束前 q 不退出
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)

	next, _ = m.Update(failedMsg{err: errors.New("boom")})
	m = next.(tuiModel)
	assert.True(t, m.done)
	assert.Contains(t, m.View(), "boom")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, renderBar(0, 20), renderBar(-5, 20))
	assert.Equal(t, renderBar(100, 20), renderBar(150, 20))
	assert.NotEqual(t, renderBar(10, 20), renderBar(90, 20))
}

func TestConsoleObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf, false, false)

	obs.OnProgress(50)
	obs.OnLog("IMG_0001.CR2.locked → IMG_0001.CR2")
	obs.OnFinished(&repair.Report{RepairedDir: "in/Repaired", Files: make([]repair.FileResult, 2)})

	out := buf.String()
	assert.Contains(t, out, " 50% IMG_0001.CR2.locked → IMG_0001.CR2")
	assert.Contains(t, out, "已修复 2 个文件")

	buf.Reset()
	quietObs := newConsoleObserver(&buf, false, true)
	quietObs.OnLog("hidden")
	quietObs.OnFailed(errors.New("x"))
	assert.Empty(t, buf.String())
}

func TestProbeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DSC_0001.NEF.locked")
	data := append(bytes.Repeat([]byte{0x01}, 32), rawfile.MarkerTail.Bytes...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	p, err := probeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ARW_OR_NEF", p.Format)
	assert.Equal(t, int64(36), p.Size)
	require.Len(t, p.Markers, 2)
	assert.False(t, p.Markers[0].Found)
	assert.True(t, p.Markers[1].Found)
	assert.Equal(t, int64(32), p.Markers[1].Offset)
	assert.Empty(t, p.ByteOrder)

	_, err = probeFile(filepath.Join(dir, "missing.CR2"))
	assert.Error(t, err)

	assert.Equal(t, "UNKNOWN", probeFormat("photo.jpg.locked"))
	assert.Equal(t, "CR2", probeFormat("IMG_0001.CR2"))
}
