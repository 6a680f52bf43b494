package noglobalstate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestReportsMutableGlobals(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer, "a", "cmdmain")
}

func TestAllowedTypes(t *testing.T) {
	require.NoError(t, Analyzer.Flags.Set("allowtypes", "allowed.Logger"))
	t.Cleanup(func() {
		require.NoError(t, Analyzer.Flags.Set("allowtypes", DefaultAllowedTypes))
	})

	analysistest.Run(t, analysistest.TestData(), Analyzer, "allowed")
}
