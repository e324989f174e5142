package main

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/cobra"
	"github.com/xueqianLu/starksigner/internal/signer"
)

var signHashCmd = &cobra.Command{
	Use:   "sign-hash <hash>",
	Short: "Sign a transaction hash with one or more managed keys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := new(felt.Felt).SetString(args[0])
		if err != nil {
			return fmt.Errorf("invalid hash: %w", err)
		}
		signerFlags, _ := cmd.Flags().GetStringSlice("signer")
		pubs := make([]*felt.Felt, 0, len(signerFlags))
		for _, s := range signerFlags {
			pub, err := new(felt.Felt).SetString(s)
			if err != nil {
				return fmt.Errorf("invalid signer %q: %w", s, err)
			}
			pubs = append(pubs, pub)
		}

		km, err := openKeyManager()
		if err != nil {
			return err
		}
		sig, err := signer.NewSigner(km).SignHash(pubs, hash)
		if err != nil {
			return err
		}
		for _, f := range sig {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	signHashCmd.Flags().StringSlice("signer", nil, "public key of a signing key, repeat for multisig")
	_ = signHashCmd.MarkFlagRequired("signer")
}
