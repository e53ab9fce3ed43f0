/*
Copyright © 2026 Regen Project
*/
package main

import (
	"github.com/regenproject/regen/internal/cmd/regen/common/utils"
	"github.com/regenproject/regen/internal/cmd/regen/root"
)

func main() {

	rootCmd := root.NewRegenRootCommand()

	err := rootCmd.Execute()
	utils.HandleError(utils.GenericError, err)
}
