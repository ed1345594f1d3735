package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)
	root.AddCommand(clipboardServeCmd)

	root.AddCommand(renderCmd)
	root.AddCommand(copyCmd)
	root.AddCommand(textCmd)
	root.AddCommand(symbolsCmd)
	root.AddCommand(probeCmd)
	root.AddCommand(configCmd)

	configCmd.AddCommand(
		configShowCmd,
		configInitCmd,
		configPresetsCmd,
		configPathCmd,
	)
}
