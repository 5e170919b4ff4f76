// Package main provides the cipherkit command line tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/go-cipherkit/cmd/cipherkit/commands"
)

func main() {
	cmd := &cli.Command{
		Name:    "cipherkit",
		Usage:   "Symmetric cipher sessions from the command line",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "algorithms",
				Usage: "List the cipher algorithm catalog",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAlgorithms()
				},
			},
			{
				Name:  "modes",
				Usage: "List the cipher mode catalog",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunModes()
				},
			},
			{
				Name:      "encrypt",
				Usage:     "Encrypt one or more files",
				ArgsUsage: "FILE [FILE...]",
				Flags:     cryptoFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunEncrypt(ctx, requestFromCommand(cmd))
				},
			},
			{
				Name:      "decrypt",
				Usage:     "Decrypt one or more files",
				ArgsUsage: "FILE [FILE...]",
				Flags:     cryptoFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDecrypt(ctx, requestFromCommand(cmd))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cryptoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "algorithm",
			Aliases: []string{"a"},
			Usage:   "Cipher algorithm name (e.g. AES256, CHACHA20)",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Mode of operation (e.g. GCM, CBC, CTR)",
		},
		&cli.StringFlag{
			Name:     "key",
			Aliases:  []string{"k"},
			Usage:    "Hex-encoded key",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "iv",
			Usage: "Hex-encoded IV or nonce",
		},
		&cli.StringFlag{
			Name:  "aad",
			Usage: "Hex-encoded additional authenticated data (AEAD modes)",
		},
		&cli.StringFlag{
			Name:  "suffix",
			Value: ".enc",
			Usage: "Suffix appended to encrypted files and stripped on decrypt",
		},
	}
}

func requestFromCommand(cmd *cli.Command) commands.Request {
	return commands.Request{
		Algorithm: cmd.String("algorithm"),
		Mode:      cmd.String("mode"),
		Key:       cmd.String("key"),
		IV:        cmd.String("iv"),
		AAD:       cmd.String("aad"),
		Suffix:    cmd.String("suffix"),
		Inputs:    cmd.Args().Slice(),
	}
}
