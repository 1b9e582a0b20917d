package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/watplay"
	"github.com/wippyai/watplay/internal/fixture"
	"github.com/wippyai/watplay/playground"
	"github.com/wippyai/watplay/wat"
)

func fixtureCompiler(bin []byte) playground.Option {
	return playground.WithCompiler(wat.CompilerFunc(func(context.Context, string) ([]byte, error) {
		return bin, nil
	}))
}

func TestRunOnce(t *testing.T) {
	var out bytes.Buffer
	src := playground.SourcePair{WAT: watplay.DefaultWAT, Host: watplay.DefaultHost}

	err := runOnce(context.Background(), playground.DefaultConfig(), src, true, &out, fixtureCompiler(fixture.Default))
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, `"consoleLog"`)
	assert.True(t, strings.HasSuffix(text, "150\nWASM function returned: 150\n"), text)
}

func TestRunOnce_Failure(t *testing.T) {
	var out bytes.Buffer
	src := playground.SourcePair{WAT: watplay.DefaultWAT, Host: "x = 1"}

	err := runOnce(context.Background(), playground.DefaultConfig(), src, false, &out, fixtureCompiler(fixture.Default))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building_env")
	assert.Contains(t, out.String(), "no 'env' object defined in host code")
}

func TestReadSources(t *testing.T) {
	src, err := readSources("", "")
	require.NoError(t, err)
	assert.Equal(t, watplay.DefaultWAT, src.WAT)
	assert.Equal(t, watplay.DefaultHost, src.Host)

	dir := t.TempDir()
	watPath := filepath.Join(dir, "m.wat")
	require.NoError(t, os.WriteFile(watPath, []byte("(module)"), 0o600))

	src, err = readSources(watPath, "")
	require.NoError(t, err)
	assert.Equal(t, "(module)", src.WAT)
	assert.Equal(t, watplay.DefaultHost, src.Host)

	_, err = readSources("", filepath.Join(dir, "absent.star"))
	assert.Error(t, err)
}

func TestInteractiveModel(t *testing.T) {
	ctx := context.Background()
	pg, err := playground.New(ctx, playground.DefaultConfig(), fixtureCompiler(fixture.Default))
	require.NoError(t, err)
	defer pg.Close(ctx)

	m := newInteractiveModel(pg, playground.SourcePair{WAT: watplay.DefaultWAT, Host: watplay.DefaultHost})
	assert.Equal(t, "Loading...", m.View())

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, cmd, "first size triggers the initial evaluation")
	msg := cmd()
	require.IsType(t, evaluatedMsg{}, msg)
	m.Update(msg)

	assert.Contains(t, m.View(), "WASM function returned: 150")

	// a second resize does not re-run
	_, cmd = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneHost, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, paneConsole, m.focus)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	require.IsType(t, evaluatedMsg{}, cmd())
}

func panickingCompiler() playground.Option {
	return playground.WithCompiler(wat.CompilerFunc(func(context.Context, string) ([]byte, error) {
		panic("compiler exploded")
	}))
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	var out bytes.Buffer
	src := playground.SourcePair{WAT: watplay.DefaultWAT, Host: watplay.DefaultHost}

	var err error
	require.NotPanics(t, func() {
		err = runOnce(context.Background(), playground.DefaultConfig(), src, false, &out, panickingCompiler())
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling")
	assert.Contains(t, out.String(), "compiler exploded")
}

func TestInteractiveModel_RecoversPanic(t *testing.T) {
	ctx := context.Background()
	pg, err := playground.New(ctx, playground.DefaultConfig(), panickingCompiler())
	require.NoError(t, err)
	defer pg.Close(ctx)

	m := newInteractiveModel(pg, playground.SourcePair{WAT: watplay.DefaultWAT, Host: watplay.DefaultHost})
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, evaluatedMsg{}, msg)
	require.NotNil(t, msg.(evaluatedMsg).res)

	require.NotPanics(t, func() { m.Update(msg) })
	assert.Equal(t, "failed", m.status)
	assert.Contains(t, m.View(), "compiler exploded")
}

func TestInteractiveModel_StaleResultIgnored(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	compiler := playground.WithCompiler(wat.CompilerFunc(func(_ context.Context, source string) ([]byte, error) {
		if source == "slow" {
			close(entered)
			<-release
			return fixture.Default, nil
		}
		return nil, fmt.Errorf("superseded run failed")
	}))
	pg, err := playground.New(ctx, playground.DefaultConfig(), compiler)
	require.NoError(t, err)
	defer pg.Close(ctx)

	m := newInteractiveModel(pg, playground.SourcePair{WAT: "broken", Host: watplay.DefaultHost})
	_, first := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, first)
	stale := first()

	m.watEd.SetValue("slow")
	second := m.evaluate()
	done := make(chan tea.Msg, 1)
	go func() { done <- second() }()
	<-entered

	// the earlier run reports after the newer one has cleared the console
	m.Update(stale)
	assert.Empty(t, m.status)
	assert.NotContains(t, m.View(), "superseded run failed")

	close(release)
	m.Update(<-done)
	assert.Equal(t, "done", m.status)
	assert.Contains(t, m.View(), "WASM function returned: 150")
	assert.NotContains(t, m.View(), "superseded run failed")
}
