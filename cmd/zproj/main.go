// main wires concrete I/O implementations into the zproj CLI.
package main

import (
	"fmt"
	"os"

	"github.com/csalatca/zproj/cmd"
	"github.com/csalatca/zproj/internal/cellpose"
	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/internal/runstore"
	"github.com/csalatca/zproj/internal/tiffio"
)

func main() {
	defer runstore.CloseStores()

	cmd.SetStoreManager(runstore.Manager)
	cmd.SetVolumeStore(tiffio.NewStore())
	cmd.SetCommandRunner(cellpose.NewExecRunner())

	err := cmd.Execute()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Failed to stop profiling", profErr)
	}
	if err != nil {
		runstore.CloseStores()
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
