// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// notestream-write runs an incremental streamnote upload session: bytes
// read from stdin or a file are fed to the session as they arrive, and
// the session closes cleanly on EOF, SIGINT or SIGTERM, per spec.md §4.5.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/noteconfig"
	"github.com/bitmark-inc/noteledger/streamnote"
)

var version = "zero"

const readChunkSize = 32 * 1024

func main() {
	if err := fault.Initialise(); nil != err {
		fmt.Fprintf(os.Stderr, "fault.Initialise: %s\n", err)
		os.Exit(1)
	}
	defer fault.Finalise()

	app := cli.NewApp()
	app.Name = "notestream-write"
	app.Usage = "run an incremental streamnote upload session"
	app.Version = version
	app.HideVersion = true
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "sender, s", Usage: "*sender private key `SEED`"},
		cli.StringFlag{Name: "file, f", Usage: " path to stream from, - or empty for stdin `FILE`"},
		cli.StringFlag{Name: "compression, c", Usage: " registered codec name, empty for none"},
		cli.StringFlag{Name: "mime, m", Usage: " MIME type to record"},
		cli.StringFlag{Name: "title, t", Usage: " payload title"},
		cli.StringFlag{Name: "aes-key", Usage: " 32-byte AES key, hex-encoded"},
		cli.StringFlag{Name: "password", Usage: " password to derive an AES key from"},
		cli.BoolFlag{Name: "verbose, v", Usage: " print writer progress events to stderr"},
	}

	app.Action = runStreamWrite

	if err := app.Run(os.Args); nil != err {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func runStreamWrite(c *cli.Context) error {
	seed := c.String("sender")
	if "" == seed {
		return fmt.Errorf("sender seed is required")
	}
	sender, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		return err
	}

	cfg, err := noteconfig.Load()
	if nil != err {
		return err
	}
	client := ledger.NewClient(cfg.Ledger)

	opts := streamnote.Options{
		Compression: c.String("compression"),
		MIME:        c.String("mime"),
		Title:       c.String("title"),
		Password:    c.String("password"),
	}
	if hexKey := c.String("aes-key"); "" != hexKey {
		key, err := hex.DecodeString(hexKey)
		if nil != err {
			return err
		}
		opts.AESKey = key
	}

	events := make(chan streamnote.Event, 16)
	if c.Bool("verbose") {
		opts.Events = events
		go drainEvents(c.App.ErrWriter, events)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	writer, err := streamnote.Start(ctx, client, sender, opts)
	if nil != err {
		return err
	}
	fmt.Fprintf(c.App.Writer, "metadata transaction: %s\n", writer.MetadataTransactionID())

	source, closeSource, err := openSource(c.String("file"))
	if nil != err {
		return err
	}
	defer closeSource()

	buf := make([]byte, readChunkSize)
readLoop:
	for {
		select {
		case <-ctx.Done():
			break readLoop
		default:
		}

		n, readErr := source.Read(buf)
		if n > 0 {
			writer.Save(buf[:n])
		}
		if io.EOF == readErr {
			break
		}
		if nil != readErr {
			return readErr
		}
	}

	return writer.Stop(context.Background())
}

func openSource(path string) (io.Reader, func(), error) {
	if "" == path || "-" == path {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if nil != err {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func drainEvents(w io.Writer, events <-chan streamnote.Event) {
	for e := range events {
		switch e.Kind {
		case streamnote.EventLog:
			fmt.Fprintf(w, "log: %s\n", e.Message)
		case streamnote.EventError:
			fmt.Fprintf(w, "error: %s\n", e.Err)
		case streamnote.EventFinish:
			fmt.Fprintf(w, "finished\n")
			return
		}
	}
}
