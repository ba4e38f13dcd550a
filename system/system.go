// Package system gathers information about the machine the shell runs on.
package system

import (
	"fmt"
	"runtime"

	"github.com/pbnjay/memory"

	"github.com/jakebf/layershell/graphics"
)

// Information is the reply to a system information query.
type Information struct {
	SystemName   string
	Arch         string
	CPUCores     int
	MemoryTotal  uint64
	MemoryFree   uint64
	GoVersion    string
	GraphicsInfo graphics.Information
}

// Gather collects Information. It may be slow and is run off the reactor
// goroutine.
func Gather(g graphics.Information) Information {
	return Information{
		SystemName:   runtime.GOOS,
		Arch:         runtime.GOARCH,
		CPUCores:     runtime.NumCPU(),
		MemoryTotal:  memory.TotalMemory(),
		MemoryFree:   memory.FreeMemory(),
		GoVersion:    runtime.Version(),
		GraphicsInfo: g,
	}
}

func (i Information) String() string {
	return fmt.Sprintf("%s/%s, %d cores, %s free of %s, %s (%s)",
		i.SystemName, i.Arch, i.CPUCores,
		formatBytes(i.MemoryFree), formatBytes(i.MemoryTotal),
		i.GraphicsInfo.Adapter, i.GraphicsInfo.Backend)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
