/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modelhub",
	Short: "ModelHub backend server and tooling",
	Long: `ModelHub is the backend for the AI model sharing site: user accounts,
admin management, model/document repositories, the RAG chatbot and the
contact mailbox. Run "modelhub server" to start the API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
