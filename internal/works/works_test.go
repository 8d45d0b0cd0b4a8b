package works_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/ngicks/timetrigger/internal/works"
	"github.com/ngicks/timetrigger/wol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	registry := timetrigger.NewWorkRegistry()
	works.Register(registry, zerolog.Nop())

	for _, kind := range []string{works.KindExec, works.KindWol, works.KindLog} {
		_, ok := registry.Load(kind)
		assert.True(t, ok, "kind %s must be registered", kind)
	}

	_, err := registry.Build("nope", nil)
	assert.ErrorIs(t, err, timetrigger.ErrWorkKindNotFound)
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on true and false commands")
	}

	e := works.NewExec(zerolog.Nop())

	_, err := e.Build(map[string]string{})
	assert.ErrorIs(t, err, timetrigger.ErrInvalidArg)

	work, err := e.Build(map[string]string{"command": "true"})
	require.NoError(t, err)
	assert.NoError(t, work(context.Background(), time.Now()))

	work, err = e.Build(map[string]string{"command": "false"})
	require.NoError(t, err)
	assert.Error(t, work(context.Background(), time.Now()))

	work, err = e.Build(map[string]string{"command": "sleep", "args": "10"})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	assert.Error(t, work(ctx, time.Now()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecAllowDenyList(t *testing.T) {
	allowed := works.NewExec(zerolog.Nop(), works.ExecAllowList([]string{"echo"}))
	_, err := allowed.Build(map[string]string{"command": "echo"})
	assert.NoError(t, err)
	_, err = allowed.Build(map[string]string{"command": "rm"})
	assert.ErrorIs(t, err, works.ErrCommandNotAllowed)

	denied := works.NewExec(zerolog.Nop(), works.ExecDenyList([]string{"rm"}))
	_, err = denied.Build(map[string]string{"command": "echo"})
	assert.NoError(t, err)
	_, err = denied.Build(map[string]string{"command": "rm"})
	assert.ErrorIs(t, err, works.ErrCommandNotAllowed)
}

func TestWakeOnLAN(t *testing.T) {
	_, err := works.WakeOnLAN(map[string]string{"mac": "zz"})
	assert.ErrorIs(t, err, timetrigger.ErrInvalidArg)
	assert.ErrorIs(t, err, wol.ErrInvalidMAC)

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	work, err := works.WakeOnLAN(map[string]string{
		"mac":  "00-11-22-33-44-55",
		"addr": conn.LocalAddr().String(),
	})
	require.NoError(t, err)
	require.NoError(t, work(context.Background(), time.Now()))

	buf := make([]byte, 256)
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	mac, _ := wol.ParseMAC("001122334455")
	assert.Equal(t, wol.MagicPacket(mac), buf[:n])
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	_, err := works.Log(logger)(map[string]string{"level": "loud"})
	assert.ErrorIs(t, err, timetrigger.ErrInvalidArg)

	work, err := works.Log(logger)(map[string]string{"message": "hello", "level": "warn"})
	require.NoError(t, err)

	scheduled := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)
	ctx := timetrigger.WithTaskInfo(context.Background(), timetrigger.TaskInfo{Id: "foo", Label: "bar", ScheduledAt: scheduled})
	require.NoError(t, work(ctx, scheduled))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "foo", line["task_id"])
	assert.Equal(t, "bar", line["label"])
}
