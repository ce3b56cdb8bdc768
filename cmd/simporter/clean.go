// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CIRAIG/bw-Simporter/internal/clean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <export.csv>",
	Short: "Clean a SimaPro export without importing it",
	Long: `Clean decodes a Latin-1 SimaPro export, renames parameters that
collide with reserved words of the target expression engine, and writes
the treated copy. Useful for inspecting what the import pipeline will
actually parse.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		treatedDir, _ := cmd.Flags().GetString("treated-dir")
		name, _ := cmd.Flags().GetString("db-name")
		if name == "" {
			name = "cleaned"
		}
		if _, err := clean.File(args[0], treatedDir, name); err != nil {
			return err
		}
		fmt.Printf("Treated export written to %s/%s.csv\n", treatedDir, name)
		return nil
	},
}

func init() {
	cleanCmd.Flags().String("treated-dir", "treated", "directory receiving the cleaned export copy")
	cleanCmd.Flags().String("db-name", "", "base name for the treated file")

	rootCmd.AddCommand(cleanCmd)
}
