// main is the entry point of the sprintboard CLI.
package main

import (
	"github.com/huangsam/sprintboard/cmd"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/iostore"
)

func main() {
	defer iostore.CloseStores()

	cmd.SetStoreManager(iostore.Manager)
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
