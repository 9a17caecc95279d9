// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/tls"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"golang.org/x/crypto/sha3"
)

// loadOrCreateCertificate loads an existing certificate/key pair,
// generating a self-signed pair first if neither file exists yet.
func loadOrCreateCertificate(name string, certificateFile string, keyFile string) (*tls.Config, []byte, error) {
	if !fileExists(certificateFile) || !fileExists(keyFile) {
		if err := makeSelfSignedCertificate(name, certificateFile, keyFile, true, nil); nil != err {
			return nil, nil, err
		}
	}

	keyPair, err := tls.LoadX509KeyPair(certificateFile, keyFile)
	if nil != err {
		return nil, nil, err
	}

	return &tls.Config{Certificates: []tls.Certificate{keyPair}}, keyPair.Certificate[0], nil
}

// makeSelfSignedCertificate writes a fresh self-signed certificate and
// private key pair for name to certificateFile/keyFile, overwriting any
// existing files. override and extraHosts are passed unchanged to
// certgen.NewTLSCertPair.
func makeSelfSignedCertificate(name string, certificateFile string, keyFile string, override bool, extraHosts []string) error {
	org := "note-upload-service self signed cert for: " + name
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, override, extraHosts)
	if nil != err {
		return err
	}

	if err := ioutil.WriteFile(certificateFile, cert, 0666); nil != err {
		return err
	}
	if err := ioutil.WriteFile(keyFile, key, 0600); nil != err {
		os.Remove(certificateFile)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return nil == err
}

// CertificateFingerprint computes the SHA3-256 fingerprint of a
// certificate, matching the value an operator can verify with
// `openssl x509 -outform DER -in FILE | sha3sum -a 256`.
func CertificateFingerprint(certificate []byte) [32]byte {
	return sha3.Sum256(certificate)
}
