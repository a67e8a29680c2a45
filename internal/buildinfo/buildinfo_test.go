package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintBuildData(t *testing.T) {
	var out bytes.Buffer
	PrintBuildData(&out)
	require.Equal(t, "Build version: N/A\nBuild date: N/A\nBuild commit: N/A\n", out.String())

	old := buildVersion
	buildVersion = "v1.2.3"
	defer func() { buildVersion = old }()

	out.Reset()
	PrintBuildData(&out)
	require.Contains(t, out.String(), "Build version: v1.2.3\n")
}
