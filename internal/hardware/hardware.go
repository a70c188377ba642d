// Package hardware probes NUMA topology facts used only to annotate charts.
// The probe is best-effort: when numactl is unavailable the annotations are
// simply omitted and the pipeline continues.
package hardware

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"numa-report/internal/logging"
)

// NodeCapacityMB reports the memory capacity of a NUMA node by running
// `numactl --hardware`. The second result is false whenever the command is
// missing, fails, or its output does not mention the node.
func NodeCapacityMB(node int) (int, bool) {
	out, err := exec.Command("numactl", "--hardware").Output()
	if err != nil {
		logging.GetLogger().WithError(err).Debug("numactl probe unavailable, capacity annotations omitted")
		return 0, false
	}
	return ParseNodeCapacityMB(string(out), node)
}

// ParseNodeCapacityMB extracts "node <n> size: <m> MB" from numactl output.
func ParseNodeCapacityMB(output string, node int) (int, bool) {
	re := regexp.MustCompile(fmt.Sprintf(`node %d size:\s+(\d+)\s+MB`, node))
	m := re.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	capacity, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return capacity, true
}
