package report

import (
	"strings"

	"github.com/iosweep/iosweep/model"
)

// Labels identifying the rows of the environment-properties artifact.
// Values sit in the cell immediately after the label, wherever the label
// appears in the row.
const (
	labelOSType        = "OS type"
	labelHostVersion   = "Host Version"
	labelKernelVersion = "Kernel version"
)

// ParseEnvProperties extracts the labeled values from the small CSV that
// accompanies the result file. Missing labels leave the corresponding field
// empty; the artifact is informational and never fails the run.
func ParseEnvProperties(lines []string) model.EnvProperties {
	var props model.EnvProperties

	for _, line := range lines {
		fields := strings.Split(line, ",")
		for i, f := range fields {
			if i+1 >= len(fields) {
				break
			}
			value := strings.TrimSpace(fields[i+1])
			switch strings.TrimSpace(f) {
			case labelOSType:
				props.OSType = value
			case labelHostVersion:
				props.HostVersion = value
			case labelKernelVersion:
				props.KernelVersion = value
			}
		}
	}

	return props
}
