package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/curriculum-coverage/internal/config"
	"github.com/jonathan/curriculum-coverage/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an API client",
	Long:  "Mint a signed JWT for an API client. Requires JWT_SECRET; JWT_EXPIRATION_HOURS and JWT_ISSUER are honored.",
	RunE:  runToken,
}

var tokenSubject string

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Client identifier stored as the token subject (required)")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenSubject)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
