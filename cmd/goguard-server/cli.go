package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/goGuard/internal/config"
)

const (
	jwtSecretBytes     = 32
	operatorTokenBytes = 24
)

var randomRead = rand.Read

func newRootCommand() *cobra.Command {
	var configFile, envFile string

	root := &cobra.Command{
		Use:   "goguard-server",
		Short: "goGuard reference authentication service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configFile, envFile)
		},
	}
	root.SilenceUsage = true
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configFile, envFile)
		},
	})
	root.AddCommand(newGenSecretsCommand())
	return root
}

// newGenSecretsCommand prints fresh values for the two secrets production
// mode requires, in .env syntax.
func newGenSecretsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-secrets",
		Short: "Generate a JWT signing secret and an operator token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := randomHex(jwtSecretBytes)
			if err != nil {
				return fmt.Errorf("generate jwt secret: %w", err)
			}
			operator, err := randomHex(operatorTokenBytes)
			if err != nil {
				return fmt.Errorf("generate operator token: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s_JWT_SECRET=%s\n%s_SERVER_OPERATOR_TOKEN=%s\n",
				config.EnvPrefix, secret, config.EnvPrefix, operator)
			return err
		},
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := randomRead(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
