package playground

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/watplay"
	"github.com/wippyai/watplay/errors"
	"github.com/wippyai/watplay/internal/fixture"
	"github.com/wippyai/watplay/wat"
)

// gatedCompiler serves fixtures by source name. "wait:<gate>:<fixture>"
// blocks until the gate is released.
type gatedCompiler struct {
	entered chan string
	gates   map[string]chan struct{}
	mu      sync.Mutex
}

var fixtures = map[string][]byte{
	"default": fixture.Default,
	"nomain":  fixture.NoMain,
	"trap":    fixture.Trap,
	"foreign": fixture.ForeignImport,
	"garbage": fixture.Garbage,
}

func newGatedCompiler() *gatedCompiler {
	return &gatedCompiler{
		entered: make(chan string, 16),
		gates:   make(map[string]chan struct{}),
	}
}

func (c *gatedCompiler) gate(name string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gates[name]
	if !ok {
		g = make(chan struct{})
		c.gates[name] = g
	}
	return g
}

func (c *gatedCompiler) release(name string) { close(c.gate(name)) }

func (c *gatedCompiler) Compile(ctx context.Context, source string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(source, "wait:"); ok {
		gate, name, _ := strings.Cut(rest, ":")
		c.entered <- gate
		select {
		case <-c.gate(gate):
		case <-ctx.Done():
			return nil, errors.CompileFailed(ctx.Err())
		}
		source = name
	}
	if source == "panic" {
		panic("compiler exploded")
	}
	bin, ok := fixtures[source]
	if !ok {
		return nil, errors.CompileFailed(fmt.Errorf("module.wat:1:2: error: unexpected token %q", source))
	}
	return bin, nil
}

func newPlayground(t *testing.T, cfg Config, opts ...Option) (*Playground, *gatedCompiler) {
	t.Helper()
	c := newGatedCompiler()
	pg, err := New(context.Background(), cfg, append([]Option{WithCompiler(c)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close(context.Background()) })
	return pg, c
}

func defaultPair() SourcePair {
	return SourcePair{WAT: "default", Host: watplay.DefaultHost}
}

var defaultTranscript = []string{"150", "WASM function returned: 150"}

func TestTrigger_DefaultSamples(t *testing.T) {
	pg, _ := newPlayground(t, DefaultConfig())

	res := pg.Trigger(context.Background(), defaultPair())
	require.NoError(t, res.Err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []string{"150"}, res.Returned)
	assert.Equal(t, defaultTranscript, pg.Console())
	assert.Contains(t, pg.AST(), `"consoleLog"`)
	assert.Contains(t, pg.AST(), `"main"`)
}

func TestTrigger_CompileFailureKeepsAST(t *testing.T) {
	pg, _ := newPlayground(t, DefaultConfig())
	ctx := context.Background()

	pg.Trigger(ctx, defaultPair())
	before := pg.AST()
	require.NotEmpty(t, before)

	res := pg.Trigger(ctx, SourcePair{WAT: "(module", Host: watplay.DefaultHost})
	require.Error(t, res.Err)

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateCompiling, res.FailedAt)
	assert.Equal(t, errors.KindCompile, errors.KindOf(res.Err))
	assert.Equal(t, before, pg.AST())

	lines := pg.Console()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "unexpected token")
}

func TestTrigger_Failures(t *testing.T) {
	tests := []struct {
		name     string
		src      SourcePair
		at       State
		kind     errors.Kind
		contains string
	}{
		{
			name:     "no env",
			src:      SourcePair{WAT: "default", Host: "x = 1"},
			at:       StateBuildingEnv,
			kind:     errors.KindMissingBindings,
			contains: "no 'env' object defined in host code",
		},
		{
			name:     "host raises",
			src:      SourcePair{WAT: "default", Host: "fail('broken host')"},
			at:       StateBuildingEnv,
			kind:     errors.KindHostEval,
			contains: "broken host",
		},
		{
			name:     "import not bound",
			src:      SourcePair{WAT: "default", Host: "env = {}"},
			at:       StateInstantiating,
			kind:     errors.KindMissingImport,
			contains: "env: consoleLog",
		},
		{
			name:     "foreign namespace",
			src:      SourcePair{WAT: "foreign", Host: watplay.DefaultHost},
			at:       StateInstantiating,
			kind:     errors.KindMissingImport,
			contains: "other: f",
		},
		{
			name:     "trap",
			src:      SourcePair{WAT: "trap", Host: watplay.DefaultHost},
			at:       StateRunning,
			kind:     errors.KindTrap,
			contains: "unreachable",
		},
		{
			name:     "undecodable binary",
			src:      SourcePair{WAT: "garbage", Host: watplay.DefaultHost},
			at:       StateDecoding,
			kind:     errors.KindDecode,
			contains: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg, _ := newPlayground(t, DefaultConfig())

			res := pg.Trigger(context.Background(), tt.src)
			require.Error(t, res.Err)
			assert.Equal(t, StateFailed, res.State)
			assert.Equal(t, tt.at, res.FailedAt)
			assert.Equal(t, tt.kind, errors.KindOf(res.Err))

			lines := pg.Console()
			require.NotEmpty(t, lines)
			last := lines[len(lines)-1]
			assert.Contains(t, last, tt.contains)
			assert.NotContains(t, last, "\n")
		})
	}
}

func TestTrigger_NoMain(t *testing.T) {
	pg, _ := newPlayground(t, DefaultConfig())

	res := pg.Trigger(context.Background(), SourcePair{WAT: "nomain", Host: watplay.DefaultHost})
	require.NoError(t, res.Err)

	assert.Equal(t, StateDone, res.State)
	assert.Nil(t, res.Returned)
	assert.Equal(t, []string{`No "main" function exported in WASM module`}, pg.Console())
}

func TestTrigger_RepeatedRunsAreIndependent(t *testing.T) {
	pg, _ := newPlayground(t, DefaultConfig())
	ctx := context.Background()

	first := pg.Trigger(ctx, defaultPair())
	assert.Equal(t, defaultTranscript, pg.Console())

	second := pg.Trigger(ctx, defaultPair())
	assert.Equal(t, defaultTranscript, pg.Console())

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, second.Token, pg.Transcript().Current())
}

func TestTrigger_HostConsole(t *testing.T) {
	pg, _ := newPlayground(t, DefaultConfig())

	pg.Trigger(context.Background(), SourcePair{WAT: "default", Host: `
print("before clear")
console.clear()
console.log("ready", 1)
env = {"consoleLog": lambda v: console.log("value:", v)}
`})

	assert.Equal(t, []string{"ready 1", "value: 150", "WASM function returned: 150"}, pg.Console())
}

func TestTrigger_PanicIsRecovered(t *testing.T) {
	pg, _ := newPlayground(t, DefaultConfig())

	var res *Result
	require.NotPanics(t, func() {
		res = pg.Trigger(context.Background(), SourcePair{WAT: "panic"})
	})
	require.NotNil(t, res)

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateCompiling, res.FailedAt)
	assert.Equal(t, errors.KindPanic, errors.KindOf(res.Err))
	assert.Equal(t, []string{res.Err.Error()}, pg.Console())
	assert.Contains(t, res.Err.Error(), "compiler exploded")
}

func TestTrigger_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	pg, _ := newPlayground(t, cfg)

	res := pg.Trigger(context.Background(), SourcePair{WAT: "default", Host: "while True:\n    pass\n"})
	require.Error(t, res.Err)
	assert.Equal(t, StateBuildingEnv, res.FailedAt)
	assert.True(t, stderrors.Is(res.Err, &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindHostEval}))
}

func TestTrigger_OnChange(t *testing.T) {
	var calls atomic.Int32
	pg, _ := newPlayground(t, DefaultConfig(), WithOnChange(func() { calls.Add(1) }))

	pg.Trigger(context.Background(), defaultPair())

	// clear, structure pane, two console lines
	assert.Equal(t, int32(4), calls.Load())
}

func TestTrigger_StaleRunIsSilent(t *testing.T) {
	for _, guard := range []bool{false, true} {
		t.Run(fmt.Sprintf("guard=%v", guard), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AST.Guard = guard
			pg, c := newPlayground(t, cfg)
			ctx := context.Background()

			slow := make(chan *Result, 1)
			go func() {
				slow <- pg.Trigger(ctx, SourcePair{
					WAT:  "wait:slow:nomain",
					Host: "print('run1')\n" + watplay.DefaultHost,
				})
			}()
			require.Equal(t, "slow", <-c.entered)

			fast := pg.Trigger(ctx, SourcePair{WAT: "default", Host: "print('run2')\n" + watplay.DefaultHost})
			require.NoError(t, fast.Err)

			c.release("slow")
			stale := <-slow
			require.NoError(t, stale.Err)
			assert.Equal(t, StateDone, stale.State)
			assert.Less(t, stale.Token, fast.Token)

			assert.Equal(t, []string{"run2", "150", "WASM function returned: 150"}, pg.Console())

			if guard {
				assert.Contains(t, pg.AST(), `"main"`)
			} else {
				// the superseded run decoded last and its structure stays visible
				assert.Contains(t, pg.AST(), `"run"`)
				assert.NotContains(t, pg.AST(), `"main"`)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AST.Format = "xml"
	_, err := New(context.Background(), cfg, WithCompiler(wat.CompilerFunc(nil)))
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))

	cfg = DefaultConfig()
	cfg.Timeout = -time.Second
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "building_env", StateBuildingEnv.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}
