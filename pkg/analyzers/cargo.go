package analyzers

import (
	"bytes"
	"os/exec"
)

// Cargo runs a cargo binary inside package directories.
type Cargo struct {
	// Path is the binary to execute. Empty means "cargo" from PATH.
	Path string
	// Env is appended to the inherited environment.
	Env []string
}

// cargoOutput holds what one cargo invocation produced.
type cargoOutput struct {
	Stdout []byte
	Stderr []byte
}

func (c Cargo) bin() string {
	if c.Path == "" {
		return "cargo"
	}
	return c.Path
}

// run executes cargo with args in dir. A non-zero exit is returned as an
// *exec.ExitError together with the captured output.
func (c Cargo) run(dir string, args ...string) (cargoOutput, error) {
	cmd := exec.Command(c.bin(), args...)
	cmd.Dir = dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return cargoOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}
