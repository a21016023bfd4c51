// Package docker shells out to the docker CLI to restart and reconfigure
// the backing containers. It is the only package that touches the service
// manager; everything else depends on the Controller contract.
package docker

import (
	"log"
	"os/exec"
	"strings"
)

// Controller is the narrow contract the restart orchestrator and the
// password managers consume. Restart returns true only when the underlying
// command exits zero; a failure to launch counts as false.
type Controller interface {
	Restart(service string) bool
}

// Compose drives services through docker compose.
type Compose struct {
	Bin         string // docker binary, e.g. /usr/bin/docker
	ComposeFile string // path to the stack's docker-compose.yml
}

// NewCompose creates a Compose controller.
func NewCompose(bin, composeFile string) *Compose {
	return &Compose{Bin: bin, ComposeFile: composeFile}
}

// Restart force-recreates a single service without touching its dependents.
func (c *Compose) Restart(service string) bool {
	return c.Exec("compose", "-f", c.ComposeFile, "up", "-d", "--force-recreate", "--no-deps", service)
}

// Recreate stops, removes, and brings a service back up so it rereads its
// environment. Needed for containers that only read env at creation.
func (c *Compose) Recreate(service string) bool {
	log.Printf("🔄 Recreating service %s to reload environment...", service)
	c.Exec("compose", "-f", c.ComposeFile, "stop", service)
	c.Exec("compose", "-f", c.ComposeFile, "rm", "-f", service)

	code, output := c.ExecOutput("compose", "-f", c.ComposeFile, "up", "-d", service)
	log.Printf("docker: recreate exit code %d, output: %s", code, output)
	return code == 0
}

// Exec runs the docker binary with args and reports whether it exited zero.
func (c *Compose) Exec(args ...string) bool {
	cmd := exec.Command(c.Bin, args...)
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			log.Printf("docker: exec %v: %v", args, err)
		}
		return false
	}
	return true
}

// ExecOutput runs the docker binary and returns the exit code and combined
// output. A launch failure is reported as exit code -1.
func (c *Compose) ExecOutput(args ...string) (int, string) {
	cmd := exec.Command(c.Bin, args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), output
		}
		log.Printf("docker: exec %v: %v", args, err)
		return -1, output
	}
	return 0, output
}
