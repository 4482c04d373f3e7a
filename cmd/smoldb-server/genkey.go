package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/smoldb/pkg/crypto"
)

var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate an RSA key pair for use with serve --persist-keys",
	Long:  `genkey writes a fresh RSA key pair to the given path, in the format serve --persist-keys loads on startup.`,
	RunE:  runGenkey,
}

func init() {
	genkeyCmd.Flags().String("out", "./server.key", "Path to write the generated key pair to")
}

func runGenkey(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	key, err := crypto.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generate key pair: %w", err)
	}
	if err := key.SaveToFile(out); err != nil {
		return fmt.Errorf("save key pair: %w", err)
	}

	fmt.Printf("wrote RSA key pair to %s\n", out)
	return nil
}
