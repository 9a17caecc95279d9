// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package noteconfig loads the process-wide configuration every cmd/*
// entry point needs, entirely from environment variables, following
// the teacher's viper.AutomaticEnv idiom rather than its HCL/Lua file
// readers (spec.md §6 names environment variables as the only
// supported configuration surface for this system).
package noteconfig

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/spf13/viper"

	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
)

// Config is the fully resolved configuration for any of this module's
// cmd/* binaries.
type Config struct {
	Ledger     ledger.Config
	ProcessKey []byte
	AppName    string
	Testnet    bool
	SQLitePath string
	CachePath  string
	Logging    logger.Configuration
}

// envKeys lists every environment variable Load recognizes, spec.md
// §6's list plus the ambient additions noted alongside them below.
var envKeys = []string{
	"algod_url", "algod_token", "algod_port",
	"indexer_url", "indexer_token", "indexer_port",
	"private_key_aes", "app_name", "sqlite_database_path",
	"ledger_cache_path", // ambient: storage's LevelDB cache path
	"testnet",           // ambient: network selection for generated accounts
}

const processKeyLength = 32

// Load builds a Config from the process environment. ALGOD_URL,
// INDEXER_URL and PRIVATE_KEY_AES are required; everything else has a
// usable default or is simply omitted.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); nil != err {
			return nil, err
		}
	}
	v.SetDefault("app_name", "noteledger")

	algodURL := v.GetString("algod_url")
	if "" == algodURL {
		return nil, fault.ErrMissingAlgodURL
	}
	if port := v.GetString("algod_port"); "" != port {
		algodURL = algodURL + ":" + port
	}

	indexerURL := v.GetString("indexer_url")
	if "" == indexerURL {
		return nil, fault.ErrMissingIndexerURL
	}
	if port := v.GetString("indexer_port"); "" != port {
		indexerURL = indexerURL + ":" + port
	}

	rawKey := v.GetString("private_key_aes")
	if "" == rawKey {
		return nil, fault.ErrMissingProcessKey
	}
	processKey, err := hex.DecodeString(rawKey)
	if nil != err || processKeyLength != len(processKey) {
		return nil, fault.ErrInvalidProcessKey
	}

	appName := v.GetString("app_name")

	return &Config{
		Ledger: ledger.Config{
			AlgodURL:     algodURL,
			AlgodToken:   v.GetString("algod_token"),
			IndexerURL:   indexerURL,
			IndexerToken: v.GetString("indexer_token"),
			Timeout:      30 * time.Second,
		},
		ProcessKey: processKey,
		AppName:    appName,
		Testnet:    v.GetBool("testnet"),
		SQLitePath: v.GetString("sqlite_database_path"),
		CachePath:  v.GetString("ledger_cache_path"),
		Logging: logger.Configuration{
			Directory: "log",
			File:      appName + ".log",
			Size:      1024 * 1024,
			Count:     10,
			Levels:    map[string]string{"DEFAULT": "info"},
		},
	}, nil
}
