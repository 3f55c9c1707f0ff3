package server

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/protocol"
)

func TestFIFOServer(t *testing.T) {
	h := newHarness(t)
	cmdPath := filepath.Join(h.dir, "cmd.fifo")
	respPath := filepath.Join(h.dir, "resp.fifo")

	srv := NewFIFO(cmdPath, respPath, FrontendChannel(), h.d)
	assert.Equal(t, "frontend-fifo", srv.Name())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool {
		a, errA := os.Stat(cmdPath)
		b, errB := os.Stat(respPath)
		return errA == nil && errB == nil &&
			a.Mode()&os.ModeNamedPipe != 0 && b.Mode()&os.ModeNamedPipe != 0
	}, 2*time.Second, 10*time.Millisecond)

	cmd, err := os.OpenFile(cmdPath, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer cmd.Close()

	resp, err := os.OpenFile(respPath, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer resp.Close()

	line, err := protocol.EncodeLine(protocol.Request{ID: 5, Body: protocol.Ping{}})
	require.NoError(t, err)
	_, err = cmd.Write(line)
	require.NoError(t, err)

	require.NoError(t, resp.SetReadDeadline(time.Now().Add(5*time.Second)))
	out, err := bufio.NewReader(resp).ReadBytes('\n')
	require.NoError(t, err)

	var got protocol.Response
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, uint32(5), got.ID)
	assert.Equal(t, protocol.Pong{}, got.Body)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fifo server did not shut down")
	}
}

func TestFIFOServerStopsWithFullResponsePipe(t *testing.T) {
	h := newHarness(t)
	cmdPath := filepath.Join(h.dir, "cmd.fifo")
	respPath := filepath.Join(h.dir, "resp.fifo")

	srv := NewFIFO(cmdPath, respPath, FrontendChannel(), h.d)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool {
		_, errA := os.Stat(cmdPath)
		_, errB := os.Stat(respPath)
		return errA == nil && errB == nil
	}, 2*time.Second, 10*time.Millisecond)

	cmd, err := os.OpenFile(cmdPath, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer cmd.Close()

	// Nobody reads the response pipe; enough pongs to fill its buffer.
	line, err := protocol.EncodeLine(protocol.Request{ID: 1, Body: protocol.Ping{}})
	require.NoError(t, err)
	for range 5000 {
		_, err := cmd.Write(line)
		require.NoError(t, err)
	}
	time.Sleep(300 * time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fifo server blocked on a full response pipe")
	}
}

func TestMakeFIFORejectsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd.fifo")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	assert.ErrorIs(t, makeFIFO(path), ErrServer)
}
