// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// notewrite uploads a file or string payload to the ledger in one shot,
// using blocknote.Save, per spec.md §4.3's blocknote mode.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/blocknote"
	"github.com/bitmark-inc/noteledger/codec"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/keypair"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/noteconfig"
)

type metadata struct {
	verbose bool
	testnet bool
	e       io.Writer
	w       io.Writer
	client  *ledger.Client
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	if err := fault.Initialise(); nil != err {
		fmt.Fprintf(os.Stderr, "fault.Initialise: %s\n", err)
		os.Exit(1)
	}
	defer fault.Finalise()

	app := cli.NewApp()
	app.Name = "notewrite"
	app.Usage = "store a file or string payload on the ledger in one shot"
	app.Version = version
	app.HideVersion = true
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "verbose, v", Usage: " verbose output"},
		cli.StringFlag{Name: "sender, s", Usage: "*sender private key `SEED`"},
		cli.StringFlag{Name: "file, f", Usage: "*path to content, - for stdin `FILE`"},
		cli.BoolFlag{Name: "string", Usage: " treat content as a UTF-8 string"},
		cli.StringFlag{Name: "compression, c", Value: "best", Usage: " codec selection: best|fast|NAME"},
		cli.StringFlag{Name: "mime, m", Usage: " MIME type to record"},
		cli.StringFlag{Name: "title, t", Usage: " payload title"},
		cli.StringFlag{Name: "aes-key", Usage: " 32-byte AES key, hex-encoded"},
		cli.StringFlag{Name: "password", Usage: " password to derive an AES key from"},
		cli.StringFlag{Name: "revision-of", Usage: " payload id this upload revises"},
	}

	app.Commands = []cli.Command{
		{
			Name:  "generate",
			Usage: "generate a new sender key pair, does not touch the ledger",
			Flags: []cli.Flag{cli.BoolFlag{Name: "testnet"}},
			Action: func(c *cli.Context) error {
				rawKeyPair, _, err := keypair.MakeRawKeyPair(c.Bool("testnet"))
				if nil != err {
					return err
				}
				return printJson(c.App.Writer, rawKeyPair)
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		if "generate" == c.Args().Get(0) {
			return nil
		}
		cfg, err := noteconfig.Load()
		if nil != err {
			return err
		}
		c.App.Metadata["config"] = &metadata{
			verbose: c.Bool("verbose"),
			testnet: cfg.Testnet,
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
			client:  ledger.NewClient(cfg.Ledger),
		}
		return nil
	}

	app.Action = runWrite

	if err := app.Run(os.Args); nil != err {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func runWrite(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	seed := c.String("sender")
	if "" == seed {
		return fmt.Errorf("sender seed is required")
	}
	sender, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		return err
	}

	content, err := readContent(c.String("file"))
	if nil != err {
		return err
	}

	opts := blocknote.Options{
		Compression: parseCompression(c.String("compression")),
		MIME:        c.String("mime"),
		Title:       c.String("title"),
		RevisionOf:  c.String("revision-of"),
		Password:    c.String("password"),
	}
	if hexKey := c.String("aes-key"); "" != hexKey {
		key, err := hex.DecodeString(hexKey)
		if nil != err {
			return err
		}
		opts.AESKey = key
	}

	result, err := blocknote.Save(context.Background(), m.client, sender, content, c.Bool("string"), opts)
	if nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "compression: %s  fees: %d\n", result.Compression, result.Fees)
	}
	return printJson(m.w, result)
}

func readContent(path string) ([]byte, error) {
	if "" == path || "-" == path {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(path)
}

func parseCompression(value string) codec.Selection {
	switch value {
	case "", "best":
		return codec.Selection{Mode: codec.ModeBest}
	case "fast":
		return codec.Selection{Mode: codec.ModeFast}
	default:
		return codec.Selection{Mode: codec.ModeExplicit, Name: value}
	}
}
