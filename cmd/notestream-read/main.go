// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// notestream-read follows a streamnote session, writing each contiguous
// chunk to stdout or a file as it arrives, per spec.md §4.7. It runs
// until the session's stop record is reached or it is interrupted.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/noteconfig"
	"github.com/bitmark-inc/noteledger/streamnote"
)

var version = "zero"

func main() {
	if err := fault.Initialise(); nil != err {
		fmt.Fprintf(os.Stderr, "fault.Initialise: %s\n", err)
		os.Exit(1)
	}
	defer fault.Finalise()

	app := cli.NewApp()
	app.Name = "notestream-read"
	app.Usage = "follow an incremental streamnote upload session"
	app.Version = version
	app.HideVersion = true
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "payload-id, p", Usage: "*metadata transaction id `ID`"},
		cli.StringFlag{Name: "aes-key", Usage: " 32-byte AES key, hex-encoded"},
		cli.StringFlag{Name: "password", Usage: " password the session was sealed with"},
		cli.StringFlag{Name: "output, o", Usage: " output file, - or empty for stdout `FILE`"},
	}

	app.Action = runStreamRead

	if err := app.Run(os.Args); nil != err {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func runStreamRead(c *cli.Context) error {
	payloadID := c.String("payload-id")
	if "" == payloadID {
		return fmt.Errorf("payload id is required")
	}

	cfg, err := noteconfig.Load()
	if nil != err {
		return err
	}
	client := ledger.NewClient(cfg.Ledger)

	opts := streamnote.ReadOptions{Password: c.String("password")}
	if hexKey := c.String("aes-key"); "" != hexKey {
		key, err := hex.DecodeString(hexKey)
		if nil != err {
			return err
		}
		opts.AESKey = key
	}

	out, closeOut, err := openSink(c.String("output"))
	if nil != err {
		return err
	}
	defer closeOut()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	onData := make(chan streamnote.DataEvent, 16)
	reader, err := streamnote.Open(ctx, client, payloadID, onData, opts)
	if nil != err {
		return err
	}

	for {
		select {
		case event := <-onData:
			if _, err := out.Write(event.Data); nil != err {
				return err
			}
		case <-sig:
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := reader.Close(closeCtx)
			closeCancel()
			return err
		}
	}
}

func openSink(path string) (io.Writer, func(), error) {
	if "" == path || "-" == path {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if nil != err {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
