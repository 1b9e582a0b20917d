// Package watplay is a WebAssembly Text playground.
//
// A session holds two sources: a WAT module and a Starlark script that
// defines the host bindings the module imports. Every edit re-runs the
// evaluation pipeline and refreshes two output panes.
//
// # Architecture Overview
//
//	watplay/            Root package with the default sources
//	├── playground/     Evaluation orchestrator, run tokens, console transcript
//	├── wat/            WAT to wasm compilation (wasmtime or wabt)
//	├── wasm/           Binary decoding into a displayable structure
//	├── engine/         wazero instantiation and entry point calls
//	├── hostenv/        Starlark host bindings (the "env" import namespace)
//	├── highlight/      WAT token grammar and terminal colouring
//	├── config/         YAML configuration and logger construction
//	├── errors/         Structured error types rendered to the console
//	└── cmd/watplay/    Terminal UI and batch runner
//
// # Quick Start
//
//	pg, err := playground.New(ctx, playground.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pg.Close(ctx)
//
//	pg.Trigger(ctx, playground.SourcePair{
//	    WAT:  watplay.DefaultWAT,
//	    Host: watplay.DefaultHost,
//	})
//	fmt.Println(pg.Console()) // [150 WASM function returned: 150]
//
// # Staleness
//
// Each Trigger call starts a run with a fresh token. Only the run holding the
// current token may write to the console; earlier runs keep executing but
// their output is dropped. Runs are never aborted on supersession.
package watplay
