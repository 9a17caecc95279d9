// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// noteread resolves and reassembles a payload stored by notewrite or the
// upload manager, using blocknote.Load, per spec.md §4.6.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/noteledger/blocknote"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/noteconfig"
)

var version = "zero"

func main() {
	if err := fault.Initialise(); nil != err {
		fmt.Fprintf(os.Stderr, "fault.Initialise: %s\n", err)
		os.Exit(1)
	}
	defer fault.Finalise()

	app := cli.NewApp()
	app.Name = "noteread"
	app.Usage = "fetch and reassemble a payload stored by notewrite"
	app.Version = version
	app.HideVersion = true
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "payload-id, p", Usage: "*metadata transaction id `ID`"},
		cli.IntFlag{Name: "revision, r", Usage: " 1-based revision number, 0 for latest `N`"},
		cli.StringFlag{Name: "aes-key", Usage: " 32-byte AES key, hex-encoded"},
		cli.StringFlag{Name: "password", Usage: " password the payload was sealed with"},
		cli.BoolFlag{Name: "raw", Usage: " skip decryption/decompression"},
		cli.StringFlag{Name: "output, o", Usage: " output file, - or empty for stdout `FILE`"},
	}

	app.Action = runRead

	if err := app.Run(os.Args); nil != err {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func runRead(c *cli.Context) error {
	payloadID := c.String("payload-id")
	if "" == payloadID {
		return fmt.Errorf("payload id is required")
	}

	cfg, err := noteconfig.Load()
	if nil != err {
		return err
	}
	client := ledger.NewClient(cfg.Ledger)

	opts := blocknote.ReadOptions{
		Password:  c.String("password"),
		Revision:  c.Int("revision"),
		ReturnRaw: c.Bool("raw"),
	}
	if hexKey := c.String("aes-key"); "" != hexKey {
		key, err := hex.DecodeString(hexKey)
		if nil != err {
			return err
		}
		opts.AESKey = key
	}

	result, err := blocknote.Load(context.Background(), client, payloadID, opts)
	if nil != err {
		return err
	}

	out := c.String("output")
	if "" == out || "-" == out {
		_, err = os.Stdout.Write(result.Content)
		return err
	}
	return ioutil.WriteFile(out, result.Content, 0644)
}
