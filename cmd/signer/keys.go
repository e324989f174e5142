package main

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing keys",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new Starknet key",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := openKeyManager()
		if err != nil {
			return err
		}
		key, err := km.CreateKey()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "public key: %s\nguid:       %s\n", key.PublicKey(), key.Identity().GUID)
		return nil
	},
}

var keysImportCmd = &cobra.Command{
	Use:   "import <private-key>",
	Short: "Import an existing Starknet private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := new(felt.Felt).SetString(args[0])
		if err != nil {
			return fmt.Errorf("invalid private key: %w", err)
		}
		km, err := openKeyManager()
		if err != nil {
			return err
		}
		key, err := km.ImportKey(priv)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "public key: %s\n", key.PublicKey())
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the public keys held by the key manager",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := openKeyManager()
		if err != nil {
			return err
		}
		for _, pub := range km.GetAccounts() {
			fmt.Fprintln(cmd.OutOrStdout(), pub)
		}
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysCreateCmd, keysImportCmd, keysListCmd)
}
