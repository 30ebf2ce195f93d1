package logbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/wsprobe/internal/types"
)

func fixedClock() func() time.Time {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestNew_Empty(t *testing.T) {
	l := New()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Snapshot())
}

func TestAppend_AssignsFields(t *testing.T) {
	l := New(WithClock(fixedClock()))

	e := l.Append(types.DirectionSent, "hello")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 1, e.Seq)
	assert.Equal(t, "10:00:01", e.Timestamp)
	assert.Equal(t, types.DirectionSent, e.Direction)
	assert.Equal(t, "hello", e.Text)
}

func TestAppend_UniqueIDs(t *testing.T) {
	l := New()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		e := l.System("x")
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestSnapshot_PreservesOrder(t *testing.T) {
	l := New(WithClock(fixedClock()))

	dirs := []types.Direction{types.DirectionSystem, types.DirectionSent, types.DirectionReceived}
	var appended []Entry
	for i := 0; i < 30; i++ {
		appended = append(appended, l.Append(dirs[i%3], fmt.Sprintf("msg-%d", i)))
	}

	snap := l.Snapshot()
	require.Len(t, snap, 30)
	assert.Equal(t, appended, snap)
}

func TestSnapshot_IsCopy(t *testing.T) {
	l := New()
	l.System("original")

	snap := l.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "original", l.Snapshot()[0].Text)
}

func TestClear_LeavesSingleSystemEntry(t *testing.T) {
	l := New()
	l.Append(types.DirectionSent, "a")
	l.Append(types.DirectionReceived, "b")

	l.Clear()

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, types.DirectionSystem, snap[0].Direction)
	assert.Equal(t, ClearedText, snap[0].Text)
}

func TestClear_SeqKeepsIncreasing(t *testing.T) {
	l := New()
	l.System("a")
	l.System("b")
	l.Clear()

	assert.Equal(t, 3, l.Snapshot()[0].Seq)
}

func TestClear_ConcurrentAppendsLandAfterClearedEntry(t *testing.T) {
	l := New()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				l.Append(types.DirectionReceived, "tick")
			}
		}
	}()

	for i := 0; i < 500; i++ {
		l.Clear()
		snap := l.Snapshot()
		require.NotEmpty(t, snap)
		require.Equal(t, ClearedText, snap[0].Text, "iteration %d", i)
	}
	close(stop)
	wg.Wait()
}

func TestSince(t *testing.T) {
	l := New()
	l.System("one")
	l.System("two")
	l.System("three")

	got := l.Since(1)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Text)
	assert.Equal(t, "three", got[1].Text)

	assert.Empty(t, l.Since(3))
	assert.Len(t, l.Since(0), 3)
}

func TestAppend_Concurrent(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Append(types.DirectionReceived, "x")
			}
		}()
	}
	wg.Wait()

	snap := l.Snapshot()
	require.Len(t, snap, 400)
	for i, e := range snap {
		assert.Equal(t, i+1, e.Seq)
	}
}

func TestExport_Text(t *testing.T) {
	l := New(WithClock(fixedClock()))
	l.Append(types.DirectionSent, "{\n  \"a\": 1\n}")
	l.System("done")

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, l.Snapshot(), FormatText))

	assert.Equal(t, "[10:00:01] sent: {\n      \"a\": 1\n    }\n[10:00:02] system: done\n", buf.String())
}

func TestExport_JSON(t *testing.T) {
	l := New()
	l.Append(types.DirectionReceived, "pong")

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, l.Snapshot(), FormatJSON))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "received", decoded[0]["direction"])
	assert.Equal(t, "pong", decoded[0]["text"])
}

func TestExport_YAML(t *testing.T) {
	l := New()
	l.System("hello")

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, l.Snapshot(), FormatYAML))
	assert.Contains(t, buf.String(), "direction: system")
}

func TestExport_UnknownFormat(t *testing.T) {
	assert.Error(t, Export(&bytes.Buffer{}, nil, "xml"))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("out/log.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("log.yml"))
	assert.Equal(t, FormatText, FormatFromPath("log.txt"))
	assert.Equal(t, FormatText, FormatFromPath("log"))
}
