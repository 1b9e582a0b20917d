package watplay

// DefaultWAT is the module loaded into the WAT pane on startup.
const DefaultWAT = `(module
  ;; Import the consoleLog function from the environment
  (import "env" "consoleLog" (func $console_log (param i32)))

  ;; Export a function that adds 100 and 50, logs the result and returns it
  (func (export "main") (result i32)
    (local $result i32)
    ;; Perform the addition
    i32.const 100
    i32.const 50
    i32.add
    ;; Store the result in a local variable
    local.set $result
    ;; Call consoleLog with the result
    local.get $result
    call $console_log
    local.get $result
  )
)
`

// DefaultHost is the Starlark source loaded into the host pane on startup.
const DefaultHost = `# Define the 'env' object with a 'consoleLog' function
def console_log(value):
    print(value)

env = {
    "consoleLog": console_log,
}
`
