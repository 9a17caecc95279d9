// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// note-upload-service runs the bootstrap-funded upload manager behind an
// HTTPS API, per spec.md §4.8: a browser-style user funds an upload with
// one signed transaction instead of holding a sender seed.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/manager"
	"github.com/bitmark-inc/noteledger/noteconfig"
	"github.com/bitmark-inc/noteledger/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "listen", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'l'},
		{Long: "certificate", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "private-key", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'k'},
		{Long: "generate-certificate", HasArg: getoptions.NO_ARGUMENT, Short: 'g'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		fmt.Printf("%s: version: %s\n", program, version)
		return
	}

	if len(options["help"]) > 0 {
		fmt.Printf("usage: %s [options]\n", program)
		fmt.Printf("  -l --listen=ADDRESS:PORT        address to serve HTTPS on (default 127.0.0.1:9443)\n")
		fmt.Printf("  -c --certificate=FILE            TLS certificate file\n")
		fmt.Printf("  -k --private-key=FILE            TLS private key file\n")
		fmt.Printf("  -g --generate-certificate         create a self-signed certificate pair and exit\n")
		return
	}

	listen := "127.0.0.1:9443"
	if len(options["listen"]) > 0 {
		listen = options["listen"][0]
	}
	certificateFile := "note-upload-service.crt"
	if len(options["certificate"]) > 0 {
		certificateFile = options["certificate"][0]
	}
	keyFile := "note-upload-service.key"
	if len(options["private-key"]) > 0 {
		keyFile = options["private-key"][0]
	}

	if len(options["generate-certificate"]) > 0 {
		if err := makeSelfSignedCertificate(program, certificateFile, keyFile, false, nil); nil != err {
			exitwithstatus.Message("%s: certificate generation failed: %s", program, err)
		}
		return
	}

	cfg, err := noteconfig.Load()
	if nil != err {
		exitwithstatus.Message("%s: configuration error: %s", program, err)
	}

	if err := logger.Initialise(cfg.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)

	if err := fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault initialise error: %s", program, err)
	}
	defer fault.Finalise()

	if "" != cfg.CachePath {
		if err := storage.Initialise(cfg.CachePath, storage.ReadWrite); nil != err {
			exitwithstatus.Message("%s: storage initialise error: %s", program, err)
		}
		defer storage.Finalise()
	}

	store, err := manager.OpenStore(cfg.SQLitePath)
	if nil != err {
		exitwithstatus.Message("%s: upload store open error: %s", program, err)
	}
	defer store.Close()

	m := &manager.Manager{
		Client:     ledger.NewClient(cfg.Ledger),
		Store:      store,
		Jobs:       manager.NewJobTable(),
		ProcessKey: cfg.ProcessKey,
		AppName:    cfg.AppName,
		Testnet:    cfg.Testnet,
	}

	tlsConfig, certificate, err := loadOrCreateCertificate(program, certificateFile, keyFile)
	if nil != err {
		exitwithstatus.Message("%s: certificate error: %s", program, err)
	}
	log.Infof("certificate fingerprint: %x", CertificateFingerprint(certificate))

	server := &http.Server{
		Addr:      listen,
		Handler:   newAPI(m, log).router(),
		TLSConfig: tlsConfig,
	}

	go func() {
		log.Infof("listening on: %s", listen)
		if err := server.ListenAndServeTLS("", ""); nil != err && http.ErrServerClosed != err {
			log.Criticalf("server error: %s", err)
		}
	}()

	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)

	log.Info("shutting down…")
	server.Close()
}
